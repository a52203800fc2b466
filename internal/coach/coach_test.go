package coach

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/core"
)

type fakeGenerator struct {
	mu       sync.Mutex
	prompts  []string
	budgets  []int32
	calls    atomic.Int32
	reply    func(prompt string) (string, error)
	delay    time.Duration
}

func (f *fakeGenerator) Generate(ctx context.Context, model, prompt string, budget int32) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.budgets = append(f.budgets, budget)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.reply(prompt)
}

func testInput() Input {
	sales := make([]core.Sale, 25)
	for i := range sales {
		sales[i] = core.Sale{
			Date:           core.NewDate(2023, 10, 15),
			Amount:         core.Money{Cents: 120000},
			Customer:       "Cliente 0001",
			Representative: "Alice M.",
			Product:        "Plano Inicial",
			Status:         core.StatusClosed,
		}
	}
	return Input{
		Target: core.SalesTarget{Month: core.Period{Year: 2023, Month: 10}, Amount: core.Money{Cents: 15000000}, DaysInMonth: 31, WorkingDays: 22},
		KPI:    core.KPI{TotalRevenue: core.Money{Cents: 3000000}, DealsClosed: 25, PercentToGoal: 20},
		AsOf:   core.NewDate(2023, 10, 16),
		Sales:  sales,
		Objections: []string{
			"Preço muito elevado comparado ao concorrente",
		},
	}
}

func TestAnalysisPrompt(t *testing.T) {
	p, err := AnalysisPrompt(testInput())
	require.NoError(t, err)

	assert.Contains(t, p, "Diretor Comercial e Analista Financeiro")
	assert.Contains(t, p, "mês atual (2023-10)")
	assert.Contains(t, p, "Data Atual: 2023-10-16")
	assert.Contains(t, p, "Dias no Mês: 31")
	assert.Contains(t, p, "- Preço muito elevado comparado ao concorrente")
	assert.Contains(t, p, "1. Forneça uma breve avaliação do ritmo atual. Estamos no caminho certo?")
	assert.Contains(t, p, "2. Identifique padrões nos dados de vendas.")
	assert.Contains(t, p, "3. **CRÍTICO:** Com base nas objeções listadas acima, forneça argumentos ou scripts de contorno específicos para ajudar o time a fechar mais vendas.")
	assert.Contains(t, p, "4. Dê 3 recomendações estratégicas acionáveis para atingir a meta.")
	assert.Contains(t, p, "Formate a saída em Markdown limpo. Use negrito para ênfase. Seja encorajador, mas realista e analítico. Responda inteiramente em Português do Brasil.")
	assert.Equal(t, 20, strings.Count(p, `"rep":"Alice M."`))
	assert.NotContains(t, p, noObjections)
}

func TestAnalysisPromptSampleIsChronological(t *testing.T) {
	in := testInput()
	// Newest first, one sale per day from the 25th down to the 1st.
	for i := range in.Sales {
		in.Sales[i].Date = core.NewDate(2023, 10, 25-i)
	}
	p, err := AnalysisPrompt(in)
	require.NoError(t, err)

	first := strings.Index(p, `"date":"2023-10-06"`)
	last := strings.Index(p, `"date":"2023-10-25"`)
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, last)
	assert.Less(t, first, last)
	assert.NotContains(t, p, `"date":"2023-10-05"`)
}

func TestAnalysisPromptWithoutObjections(t *testing.T) {
	in := testInput()
	in.Objections = nil
	in.Sales = nil
	p, err := AnalysisPrompt(in)
	require.NoError(t, err)
	assert.Contains(t, p, noObjections)
	assert.Contains(t, p, "[]")
}

func TestTeamMessagePrompt(t *testing.T) {
	p := TeamMessagePrompt(core.KPI{PercentToGoal: 42.5, TotalRevenue: core.Money{Cents: 6375000}})
	assert.Contains(t, p, "Estamos em 42,5%")
	assert.Contains(t, p, "Máximo de 50 palavras")
}

func TestAnalyzeNotConfigured(t *testing.T) {
	c := New(nil, Config{}, nil)
	assert.False(t, c.Configured())

	_, err := c.Analyze(context.Background(), testInput())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, MsgNotConfigured, UserMessage(err))
	assert.Equal(t, "", c.TeamMessage(context.Background(), core.KPI{}))
}

func TestAnalyzeEmptyAndFailure(t *testing.T) {
	gen := &fakeGenerator{reply: func(string) (string, error) { return "  ", nil }}
	c := New(gen, Config{ThinkingBudget: DefaultThinkingBudget}, nil)

	text, err := c.Analyze(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, MsgNoAnalysis, text)
	assert.Equal(t, []int32{DefaultThinkingBudget}, gen.budgets)

	gen.reply = func(string) (string, error) { return "", errors.New("429 rate limited") }
	_, err = c.Analyze(context.Background(), testInput())
	require.Error(t, err)
	assert.Equal(t, MsgFailed, UserMessage(err))
	assert.Equal(t, "", c.TeamMessage(context.Background(), core.KPI{}))
}

func TestRunProducesBoth(t *testing.T) {
	gen := &fakeGenerator{reply: func(p string) (string, error) {
		if strings.Contains(p, "Slack/Teams") {
			return " Vamos com tudo! ", nil
		}
		return "## Análise", nil
	}}
	c := New(gen, Config{}, nil)

	res, err := c.Run(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, "## Análise", res.Analysis)
	assert.Equal(t, "Vamos com tudo!", res.TeamMessage)
	assert.Equal(t, int32(2), gen.calls.Load())
}

func TestRunKeepsTeamMessageWhenAnalysisFails(t *testing.T) {
	gen := &fakeGenerator{reply: func(p string) (string, error) {
		if strings.Contains(p, "Slack/Teams") {
			return "Bora, time!", nil
		}
		return "", errors.New("503 unavailable")
	}}
	c := New(gen, Config{}, nil)

	res, err := c.Run(context.Background(), testInput())
	require.Error(t, err)
	assert.Equal(t, MsgFailed, UserMessage(err))
	assert.Equal(t, "Bora, time!", res.TeamMessage)
	assert.Empty(t, res.Analysis)
}

func TestRunSharesInFlightRequest(t *testing.T) {
	gen := &fakeGenerator{delay: 100 * time.Millisecond, reply: func(string) (string, error) { return "ok", nil }}
	c := New(gen, Config{}, nil)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := c.Run(context.Background(), testInput())
			assert.NoError(t, err)
			assert.Equal(t, "ok", res.Analysis)
		}()
	}
	wg.Wait()
	// One analysis plus one team message, however many callers.
	assert.LessOrEqual(t, gen.calls.Load(), int32(4))
	assert.GreaterOrEqual(t, gen.calls.Load(), int32(2))
}

func TestRunCallerCancellation(t *testing.T) {
	gen := &fakeGenerator{delay: time.Second, reply: func(string) (string, error) { return "late", nil }}
	c := New(gen, Config{}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Run(ctx, testInput())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
