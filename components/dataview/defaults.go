package dataview

import "net/http"

var defaultResources = []ResourceConfig{
	{
		Code:          "products",
		Name:          "Products",
		NameLocalized: map[string]string{"es": "Productos"},
		Endpoint:      "/products",
		Columns: []Column{
			{Field: "name", Sortable: true},
			{Field: "category", Filterable: true, Sortable: true},
			{Field: "price", Sortable: true},
			{Field: "stock", Sortable: true},
			{Field: "status", Filterable: true, Sortable: true, LabelLocalized: map[string]string{"es": "Estado"}},
		},
		SearchFields: []string{"name", "description"},
		PageSize:     10,
		Roles:        []string{"admin", "seller"},
		Actions: []RowAction{
			{Name: "set_status", Label: "Change status", Method: http.MethodPatch, Fields: []string{"status"}},
			{Name: "delete", Label: "Delete", Method: http.MethodDelete, Deletes: true},
		},
		PatchSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{"type": "string", "enum": []string{"active", "inactive", "draft"}},
				"price":  map[string]any{"type": "number", "minimum": 0},
				"stock":  map[string]any{"type": "integer", "minimum": 0},
			},
		},
	},
	{
		Code:          "orders",
		Name:          "Orders",
		NameLocalized: map[string]string{"es": "Pedidos"},
		Endpoint:      "/orders",
		Columns: []Column{
			{Field: "id", Label: "Order", Sortable: true},
			{Field: "customer.name", Label: "Customer", Sortable: true},
			{Field: "total", Sortable: true},
			{Field: "status", Filterable: true, Sortable: true, LabelLocalized: map[string]string{"es": "Estado"}},
			{Field: "createdAt", Label: "Placed", Sortable: true},
		},
		SearchFields: []string{"id", "customer.name", "customer.email"},
		PageSize:     20,
		Roles:        []string{"admin", "seller"},
		Actions: []RowAction{
			{Name: "set_status", Label: "Update status", Method: http.MethodPatch, Path: "status", Fields: []string{"status"}},
		},
		PatchSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{"type": "string", "enum": []string{"pending", "processing", "shipped", "delivered", "cancelled"}},
			},
		},
	},
	{
		Code:          "users",
		Name:          "Users",
		NameLocalized: map[string]string{"es": "Usuarios"},
		Endpoint:      "/users",
		Columns: []Column{
			{Field: "name", Sortable: true},
			{Field: "email", Sortable: true},
			{Field: "role", Filterable: true, Sortable: true},
			{Field: "status", Filterable: true, Sortable: true},
		},
		SearchFields: []string{"name", "email"},
		PageSize:     20,
		Roles:        []string{"admin"},
		Actions: []RowAction{
			{Name: "set_status", Label: "Change status", Method: http.MethodPatch, Fields: []string{"status"}},
			{Name: "set_role", Label: "Change role", Method: http.MethodPatch, Path: "role", Fields: []string{"role"}},
			{Name: "delete", Label: "Delete", Method: http.MethodDelete, Deletes: true},
		},
		PatchSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"status": map[string]any{"type": "string", "enum": []string{"active", "inactive", "banned"}},
				"role":   map[string]any{"type": "string", "enum": []string{"admin", "seller", "buyer"}},
			},
		},
	},
	{
		Code:          "subscription_plans",
		Name:          "Subscription plans",
		NameLocalized: map[string]string{"es": "Planes de suscripción"},
		Endpoint:      "/subscription-plans",
		Columns: []Column{
			{Field: "name", Sortable: true},
			{Field: "price", Sortable: true},
			{Field: "interval", Filterable: true},
			{Field: "isActive", Label: "Active", Filterable: true},
		},
		SearchFields: []string{"name", "description"},
		PageSize:     10,
		Roles:        []string{"admin"},
		Actions: []RowAction{
			{Name: "toggle_active", Label: "Toggle active", Method: http.MethodPatch, Path: "toggle", Toggle: []string{"isActive"}, Fields: []string{}},
			{Name: "delete", Label: "Delete", Method: http.MethodDelete, Deletes: true},
		},
		PatchSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"isActive": map[string]any{"type": "boolean"},
				"price":    map[string]any{"type": "number", "minimum": 0},
			},
		},
	},
}

// DefaultResources returns the marketplace admin resources.
func DefaultResources() []ResourceConfig {
	out := make([]ResourceConfig, len(defaultResources))
	copy(out, defaultResources)
	return out
}
