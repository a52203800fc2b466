package http

import (
	"errors"
	"html/template"
	"net/http"
	"sync/atomic"

	"salespulse/internal/core"
	applog "salespulse/internal/log"
	"salespulse/internal/sales"
	"salespulse/internal/services"
)

// validationMessages maps domain errors to the text shown to the user.
var validationMessages = []struct {
	err error
	msg string
}{
	{core.ErrInvalidAmount, "Valor inválido"},
	{core.ErrInvalidDay, "Data inválida"},
	{core.ErrInvalidMonth, "Data inválida"},
	{core.ErrInvalidStatus, "Status inválido"},
	{core.ErrEmptyCustomer, "Informe o nome do cliente"},
	{core.ErrEmptyRepresentative, "Selecione um representante"},
	{core.ErrEmptyProduct, "Selecione um produto"},
	{core.ErrInvalidTarget, "Meta inválida"},
	{core.ErrEmptyName, "Informe um nome"},
	{core.ErrNameTooLong, "Texto muito longo (máx. 200 caracteres)"},
	{services.ErrUnknownProduct, "Produto desconhecido"},
	{services.ErrUnknownRepresentative, "Representante desconhecido"},
	{sales.ErrDuplicateProduct, "Produto já cadastrado"},
}

// validationMessage returns the user-facing text for a validation error.
func validationMessage(err error) (string, bool) {
	var formErr *SaleFormError
	if errors.As(err, &formErr) {
		switch formErr.Field {
		case "date":
			return "Data inválida", true
		case "status":
			return "Status inválido", true
		default:
			return "Valor inválido", true
		}
	}
	for _, m := range validationMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}
	return "", false
}

func (s *Server) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentSales)

	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		logger.WarnContext(ctx, "Malformed sale request", applog.FieldOperation, applog.OpParse)
		resp.Write(w)
		return
	}

	in, err := ParseSaleForm(p)
	if err == nil {
		var sale core.Sale
		sale, err = s.svc.RecordSale(ctx, in)
		if err == nil {
			atomic.AddInt64(&s.appMetrics.salesRecorded, 1)
			NewHTMXResponse().
				TriggerSaleCreated(sale.ID).
				TriggerFormReset().
				TriggerSuccessNotification("Venda registrada com sucesso!").
				BodyHTML(`<div class="success">Venda registrada: ` +
					template.HTMLEscapeString(sale.Customer) + ` · ` +
					template.HTMLEscapeString(core.FormatBRL(sale.Amount)) + ` (` +
					template.HTMLEscapeString(sale.Product) + ` / ` +
					template.HTMLEscapeString(sale.Representative) + `)</div>`).
				Write(w)
			return
		}
	}

	if msg, ok := validationMessage(err); ok {
		logger.InfoContext(ctx, "Sale rejected",
			applog.FieldOperation, applog.OpValidate,
			applog.FieldError, err)
		UnprocessableEntityError(msg).Write(w)
		return
	}
	logger.ErrorContext(ctx, "Failed to record sale",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldError, err)
	InternalServerError("Erro ao salvar a venda").
		TriggerErrorNotification("Erro ao salvar a venda").
		Write(w)
}

func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	if resp := RequireDeleteOrPOST(r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	logger := applog.FromContext(ctx).WithComponent(applog.ComponentSales)

	p, resp := ParseBodyOrFail(r)
	if resp != nil {
		resp.Write(w)
		return
	}
	id := p.Get("id")
	if id == "" {
		BadRequestError("ID da venda não informado").Write(w)
		return
	}

	if err := s.svc.DeleteSale(ctx, id); err != nil {
		if errors.Is(err, sales.ErrNotFound) {
			NotFoundError("Venda não encontrada").Write(w)
			return
		}
		logger.ErrorContext(ctx, "Failed to delete sale",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldSaleID, id,
			applog.FieldError, err)
		InternalServerError("Erro ao remover a venda").Write(w)
		return
	}

	atomic.AddInt64(&s.appMetrics.salesDeleted, 1)
	NewHTMXResponse().
		TriggerSaleDeleted(id).
		TriggerSuccessNotification("Venda removida").
		Write(w)
}
