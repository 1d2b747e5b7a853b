package render

import "github.com/itchan-dev/postdesk/internal/domain"

// Page is the data behind a full page and the list fragment.
type Page struct {
	Mode       Mode
	Posts      []PostView
	Categories []domain.Category
	Filter     domain.Category
	Query      string
	Form       Form
	Edit       *EditView
}

// EditView is the open edit dialog.
type EditView struct {
	Id     domain.PostId
	NodeId string
	Form   Form
}

func (p Page) Editable() bool {
	return p.Mode == Editable
}
