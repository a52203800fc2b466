package http

import (
	"context"
	"net/http"
	"sync/atomic"

	"salespulse/internal/core"
	applog "salespulse/internal/log"
)

// Settings tabs, in display order.
const (
	tabTarget     = "meta"
	tabProducts   = "produtos"
	tabTeam       = "equipe"
	tabObjections = "objecoes"
)

// settingsView renders the settings panel on the active tab. Error is shown
// above the tab content after a rejected edit.
type settingsView struct {
	dashboardView
	Tab   string
	Error string
}

func validTab(tab string) string {
	switch tab {
	case tabTarget, tabProducts, tabTeam, tabObjections:
		return tab
	default:
		return tabTarget
	}
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if resp := RequireGET(r); resp != nil {
		resp.Write(w)
		return
	}
	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	tab := validTab(sanitizeInput(r.URL.Query().Get("tab")))
	s.render(w, r, NewHTMXResponse(), "settings.html", settingsView{dashboardView: v, Tab: tab})
}

// settingsEdit runs one settings mutation and re-renders the panel on tab.
// apply reads what it needs from the parsed body.
func (s *Server) settingsEdit(w http.ResponseWriter, r *http.Request, tab, success string, apply func(ctx context.Context, p *RequestBodyParser) error) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentSettings)

	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}

	builder := NewHTMXResponse()
	view := settingsView{Tab: tab}
	if err := apply(ctx, p); err != nil {
		msg, ok := validationMessage(err)
		if !ok {
			logger.ErrorContext(ctx, "Settings update failed",
				"tab", tab,
				applog.FieldOperation, applog.OpUpdate,
				applog.FieldError, err)
			InternalServerError("Erro ao salvar as configurações").Write(w)
			return
		}
		logger.InfoContext(ctx, "Settings update rejected", "tab", tab, applog.FieldError, err)
		view.Error = msg
		builder.Status(http.StatusUnprocessableEntity)
	} else {
		atomic.AddInt64(&s.appMetrics.settingsEdits, 1)
		logger.InfoContext(ctx, "Settings updated", "tab", tab, applog.FieldOperation, applog.OpUpdate)
		builder.TriggerSettingsChanged(tab).TriggerSuccessNotification(success)
	}

	v, ok := s.loadView(w, r)
	if !ok {
		return
	}
	view.dashboardView = v
	s.render(w, r, builder, "settings.html", view)
}

func (s *Server) handleUpdateTarget(w http.ResponseWriter, r *http.Request) {
	s.settingsEdit(w, r, tabTarget, "Meta atualizada com sucesso!", func(ctx context.Context, p *RequestBodyParser) error {
		cents, err := core.ParseDecimalToCents(p.Get("amount"))
		if err != nil {
			return core.ErrInvalidTarget
		}
		_, err = s.svc.UpdateTargetAmount(ctx, core.Money{Cents: cents})
		return err
	})
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	s.settingsEdit(w, r, tabProducts, "Produto adicionado", func(ctx context.Context, p *RequestBodyParser) error {
		cents, err := core.ParseDecimalToCents(p.Get("price"))
		if err != nil {
			return err
		}
		_, err = s.svc.AddProduct(ctx, p.Get("name"), core.Money{Cents: cents})
		return err
	})
}

func (s *Server) handleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	s.settingsEdit(w, r, tabProducts, "Produto removido", func(ctx context.Context, p *RequestBodyParser) error {
		return s.svc.RemoveProduct(ctx, p.Get("id"))
	})
}

func (s *Server) handleAddRepresentative(w http.ResponseWriter, r *http.Request) {
	s.settingsEdit(w, r, tabTeam, "Representante adicionado", func(ctx context.Context, p *RequestBodyParser) error {
		return s.svc.AddRepresentative(ctx, p.Get("name"))
	})
}

func (s *Server) handleRemoveRepresentative(w http.ResponseWriter, r *http.Request) {
	s.settingsEdit(w, r, tabTeam, "Representante removido", func(ctx context.Context, p *RequestBodyParser) error {
		return s.svc.RemoveRepresentative(ctx, p.Get("name"))
	})
}

func (s *Server) handleAddObjection(w http.ResponseWriter, r *http.Request) {
	s.settingsEdit(w, r, tabObjections, "Objeção adicionada", func(ctx context.Context, p *RequestBodyParser) error {
		return s.svc.AddObjection(ctx, p.Get("text"))
	})
}

func (s *Server) handleRemoveObjection(w http.ResponseWriter, r *http.Request) {
	s.settingsEdit(w, r, tabObjections, "Objeção removida", func(ctx context.Context, p *RequestBodyParser) error {
		return s.svc.RemoveObjection(ctx, p.Get("text"))
	})
}
