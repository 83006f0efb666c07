package billing

import "github.com/enlacehub/enlacehub-backend/pkg/enums"

// Plan describes one tier of the public pricing page.
type Plan struct {
	Type     enums.PlanType `json:"type"`
	Name     string         `json:"name"`
	Price    int            `json:"price"`
	PriceID  string         `json:"price_id,omitempty"`
	Features []string       `json:"features"`
}

// Plans is the product catalog. Prices are EUR per month.
func Plans() []Plan {
	return []Plan{
		{
			Type:  enums.PlanTypeFree,
			Name:  "Gratuito",
			Price: 0,
			Features: []string{
				"Hasta 5 enlaces",
				"Temas básicos",
				"Estadísticas básicas",
				"Subdominio enlacehub.com",
			},
		},
		{
			Type:    enums.PlanTypePro,
			Name:    "Pro",
			Price:   9,
			PriceID: "price_pro_monthly",
			Features: []string{
				"Enlaces ilimitados",
				"Todos los temas premium",
				"Analytics avanzados",
				"Dominio personalizado",
				"Sin marca EnlaceHub",
				"Soporte prioritario",
				"Códigos QR personalizados",
				"Programación de enlaces",
				"A/B Testing",
				"Integraciones avanzadas",
			},
		},
		{
			Type:    enums.PlanTypeBusiness,
			Name:    "Business",
			Price:   19,
			PriceID: "price_business_monthly",
			Features: []string{
				"Todo de Pro",
				"Múltiples colaboradores",
				"API personalizada",
				"Webhooks",
				"Backups automáticos",
				"Soporte 24/7",
				"Consultoría personalizada",
				"White-label completo",
			},
		},
	}
}
