package dynamiccomponents

import "github.com/vioreel/viocommerce/services/cart"

// RenderedComponent is the closed variant set the overlay UI consumes.
type RenderedComponent interface {
	isRenderedComponent()
}

type RenderedBanner struct {
	ComponentUID string
	Title        string
	Text         string
	Position     string
	Animation    string
}

func (RenderedBanner) isRenderedComponent() {}

type RenderedFeaturedProduct struct {
	ComponentUID string
	Product      cart.Product
	Position     string
}

func (RenderedFeaturedProduct) isRenderedComponent() {}

// Render projects the active set into display-ready variants. Pure: no state,
// re-evaluated whenever the active set changes.
func Render(active []Component) []RenderedComponent {
	rendered := make([]RenderedComponent, 0, len(active))
	for _, component := range active {
		switch component.Type {
		case TypeBanner:
			rendered = append(rendered, RenderedBanner{
				ComponentUID: component.ID,
				Title:        component.Data.Title,
				Text:         component.Data.Text,
				Position:     component.Position,
				Animation:    component.Data.Animation,
			})
		case TypeFeaturedProduct:
			rendered = append(rendered, RenderedFeaturedProduct{
				ComponentUID: component.ID,
				Product:      *component.Data.Product,
				Position:     component.Position,
			})
		}
	}

	return rendered
}
