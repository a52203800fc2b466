package coach

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"

	"salespulse/internal/core"
)

// recentSalesLimit caps how many sales are sent to the model.
const recentSalesLimit = 20

const noObjections = "Nenhuma objeção específica registrada."

// Input is the data the coach needs from a dashboard snapshot.
type Input struct {
	Target     core.SalesTarget
	KPI        core.KPI
	AsOf       core.Date
	Sales      []core.Sale // newest first
	Objections []string
	Team       []core.RepSummary
}

type promptSale struct {
	Date    string  `json:"date"`
	Amount  float64 `json:"amount"`
	Rep     string  `json:"rep"`
	Product string  `json:"product"`
}

var analysisTmpl = template.Must(template.New("analysis").Parse(
	`Você é um experiente Diretor Comercial e Analista Financeiro.
Analise os seguintes dados de vendas para o mês atual ({{.Month}}).

Data Atual: {{.AsOf}}

**Metas:**
- Objetivo: {{.Target}}
- Dias no Mês: {{.Days}}

**Desempenho Atual (KPIs):**
- Receita Total até agora: {{.Total}}
- Negócios Fechados: {{.Deals}}
- Ticket Médio: {{.Average}}
- Projeção Atual (Linear): {{.Projection}}
- % da Meta: {{.Percent}}%
{{- if .Team}}

**Desempenho por Vendedor:**
{{- range .Team}}
- {{.Representative}}: {{.Revenue}} ({{.Deals}} negócios)
{{- end}}
{{- end}}

**Principais Objeções Relatadas pelo Time:**
{{.Objections}}

**Transações Detalhadas (Recentes):**
{{.Sales}}

**Instruções:**
1. Forneça uma breve avaliação do ritmo atual. Estamos no caminho certo?
2. Identifique padrões nos dados de vendas.
3. **CRÍTICO:** Com base nas objeções listadas acima, forneça argumentos ou scripts de contorno específicos para ajudar o time a fechar mais vendas.
4. Dê 3 recomendações estratégicas acionáveis para atingir a meta.

Formate a saída em Markdown limpo. Use negrito para ênfase. Seja encorajador, mas realista e analítico. Responda inteiramente em Português do Brasil.
`))

type teamLine struct {
	Representative string
	Revenue        string
	Deals          int
}

// AnalysisPrompt renders the pt-BR coaching prompt.
func AnalysisPrompt(in Input) (string, error) {
	objections := noObjections
	if len(in.Objections) > 0 {
		lines := make([]string, len(in.Objections))
		for i, o := range in.Objections {
			lines[i] = "- " + o
		}
		objections = strings.Join(lines, "\n")
	}

	// The sample is the most recent sales in chronological order.
	recent := in.Sales
	if len(recent) > recentSalesLimit {
		recent = recent[:recentSalesLimit]
	}
	sample := make([]promptSale, len(recent))
	for i, s := range recent {
		sample[len(recent)-1-i] = promptSale{Date: s.Date.String(), Amount: s.Amount.Reais(), Rep: s.Representative, Product: s.Product}
	}
	salesJSON, err := json.Marshal(sample)
	if err != nil {
		return "", err
	}

	team := make([]teamLine, len(in.Team))
	for i, r := range in.Team {
		team[i] = teamLine{Representative: r.Representative, Revenue: core.FormatBRLWhole(r.Revenue), Deals: r.Deals}
	}

	var buf bytes.Buffer
	err = analysisTmpl.Execute(&buf, map[string]any{
		"Month":      in.Target.Month.String(),
		"AsOf":       in.AsOf.String(),
		"Target":     core.FormatBRLWhole(in.Target.Amount),
		"Days":       in.Target.DaysInMonth,
		"Total":      core.FormatBRLWhole(in.KPI.TotalRevenue),
		"Deals":      in.KPI.DealsClosed,
		"Average":    core.FormatBRLWhole(in.KPI.AverageTicket),
		"Projection": core.FormatBRLWhole(in.KPI.Projection),
		"Percent":    strings.TrimSuffix(core.FormatPercent(in.KPI.PercentToGoal), "%"),
		"Team":       team,
		"Objections": objections,
		"Sales":      string(salesJSON),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TeamMessagePrompt renders the short motivational message prompt.
func TeamMessagePrompt(k core.KPI) string {
	return "Escreva uma mensagem curta e motivacional para o Slack/Teams para a equipe de vendas com base neste status: " +
		"Estamos em " + core.FormatPercent(k.PercentToGoal) + " da nossa meta com receita de " + core.FormatBRLWhole(k.TotalRevenue) + ". " +
		"Mantenha profissional mas com alta energia. Máximo de 50 palavras. Responda em Português do Brasil."
}
