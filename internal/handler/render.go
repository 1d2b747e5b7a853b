package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/itchan-dev/postdesk/internal/bindings"
	"github.com/itchan-dev/postdesk/internal/domain"
	"github.com/itchan-dev/postdesk/internal/logger"
	mw "github.com/itchan-dev/postdesk/internal/middleware"
	"github.com/itchan-dev/postdesk/internal/render"
)

// CommonTemplateData holds fields that are common to all page templates.
// Available in templates as .Common via the TemplateData wrapper.
type CommonTemplateData struct {
	Error     string
	Warning   string
	CSRFToken string
	ReturnTo  string // where the theme toggle sends the user back to
	Theme     render.ThemeView
}

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common CommonTemplateData
}

func (h *Handler) getTemplate(name string) (*template.Template, bool) {
	tmpl, ok := h.Templates[name]
	return tmpl, ok
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request, theme domain.Theme) CommonTemplateData {
	return CommonTemplateData{
		Error:     h.popFlash(w, r, flashCookieError),
		Warning:   h.popFlash(w, r, flashCookieWarning),
		CSRFToken: mw.GetCSRFTokenFromContext(r),
		ReturnTo:  r.URL.Path,
		Theme:     render.Theme(theme),
	}
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, state bindings.State, data any) {
	tmpl, ok := h.getTemplate(name)
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	wrapped := TemplateData{
		Data:   data,
		Common: h.initCommonTemplateData(w, r, state.Theme),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, wrapped); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// renderList writes only the post list, for live search.
func (h *Handler) renderList(w http.ResponseWriter, r *http.Request, page render.Page) {
	tmpl, ok := h.getTemplate(feedTemplate)
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", feedTemplate), http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	err := tmpl.ExecuteTemplate(buf, render.ListTemplate, map[string]any{
		"Page":   page,
		"Common": CommonTemplateData{CSRFToken: mw.GetCSRFTokenFromContext(r)},
	})
	if err != nil {
		logger.Log.Error("error executing template", "template", render.ListTemplate, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// page projects a controller snapshot into what the templates need.
func (h *Handler) page(state bindings.State, mode render.Mode) render.Page {
	draft := state.Draft
	if draft.Category == "" {
		draft.Category = h.defaultCategory()
	}

	page := render.Page{
		Mode:       mode,
		Posts:      h.pipeline.Posts(state.Visible, mode, state.FreshId),
		Categories: h.public.Posts.Categories,
		Filter:     state.Filter,
		Query:      state.Query,
		Form:       h.pipeline.Form(draft),
	}
	if state.Editing && mode == render.Editable {
		page.Edit = &render.EditView{
			Id:     state.EditId,
			NodeId: state.EditNode,
			Form:   h.pipeline.Form(state.EditDraft),
		}
	}
	return page
}

func (h *Handler) defaultCategory() domain.Category {
	if len(h.public.Posts.Categories) == 0 {
		return ""
	}
	return h.public.Posts.Categories[0]
}
