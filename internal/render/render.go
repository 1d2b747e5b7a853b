// Package render projects the post collection into view models for the page templates.
package render

import (
	"fmt"
	"html"
	"html/template"
	"unicode/utf8"

	"github.com/itchan-dev/postdesk/internal/domain"
)

// Mode decides whether action controls are shown. It is passed explicitly by the
// caller and never derived from the request path.
type Mode int

const (
	ReadOnly Mode = iota
	Editable
)

func (m Mode) String() string {
	if m == Editable {
		return "editable"
	}
	return "readonly"
}

// ParseMode accepts "editable"; anything else is read-only.
func ParseMode(s string) Mode {
	if s == "editable" {
		return Editable
	}
	return ReadOnly
}

// ContentRenderer turns raw post content into safe HTML.
type ContentRenderer interface {
	Render(text string) string
}

type PostView struct {
	Id          domain.PostId
	NodeId      string
	ImageURL    string
	ImageAlt    string
	Title       string
	Content     template.HTML
	Meta        string
	Category    domain.Category
	ShowActions bool
	Fresh       bool // newest post since the last rebuild, gets the slide-in animation
}

type Field struct {
	Value     string
	Len       int
	Max       int
	NearLimit bool
}

type Form struct {
	Title    Field
	Content  Field
	Category domain.Category
}

type ThemeView struct {
	Name      domain.Theme
	BodyClass string
	Icon      string
}

type Pipeline struct {
	content    ContentRenderer
	titleMax   int
	contentMax int
}

// New builds a pipeline. A nil content renderer renders plain escaped text.
func New(content ContentRenderer, titleMax, contentMax int) *Pipeline {
	return &Pipeline{content: content, titleMax: titleMax, contentMax: contentMax}
}

// Posts rebuilds the full list of views for the visible posts.
func (p *Pipeline) Posts(posts []domain.Post, mode Mode, freshId domain.PostId) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		views = append(views, PostView{
			Id:          post.Id,
			NodeId:      NodeId(post.Id),
			ImageURL:    post.ImageURL,
			ImageAlt:    "Image for " + post.Title,
			Title:       post.Title,
			Content:     p.renderContent(post.Content),
			Meta:        MetaLine(post),
			Category:    post.Category,
			ShowActions: mode == Editable,
			Fresh:       freshId != "" && post.Id == freshId,
		})
	}
	return views
}

func (p *Pipeline) renderContent(text string) template.HTML {
	if p.content == nil {
		return template.HTML(html.EscapeString(text))
	}
	return template.HTML(p.content.Render(text))
}

// Form prefills an input form and computes the character count feedback.
func (p *Pipeline) Form(draft domain.PostDraft) Form {
	return Form{
		Title:    field(draft.Title, p.titleMax),
		Content:  field(draft.Content, p.contentMax),
		Category: draft.Category,
	}
}

// NearLimit reports whether length is over 90% of max. A non-positive max disables the check.
func NearLimit(length, max int) bool {
	return max > 0 && length*10 > max*9
}

func field(value string, max int) Field {
	n := utf8.RuneCountInString(value)
	return Field{Value: value, Len: n, Max: max, NearLimit: NearLimit(n, max)}
}

func NodeId(id domain.PostId) string {
	return "post-" + id
}

func MetaLine(post domain.Post) string {
	verb := "Posted"
	if post.Edited {
		verb = "Edited"
	}
	return fmt.Sprintf("%s | %s on %s", post.Category, verb, post.Timestamp)
}

// Theme returns the body class and the toggle icon, which shows the theme a click switches to.
func Theme(theme domain.Theme) ThemeView {
	if theme.Dark() {
		return ThemeView{Name: theme, BodyClass: "dark", Icon: "sun"}
	}
	return ThemeView{Name: theme, BodyClass: "", Icon: "moon"}
}
