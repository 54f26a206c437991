package rest

import dataview "github.com/goliatone/go-dataview/components/dataview"

// MarketplaceSeed returns demo collections for the built-in resources.
func MarketplaceSeed() map[string][]dataview.Record {
	return map[string][]dataview.Record{
		"products": {
			{"id": "p-100", "name": "Ceramic mug", "description": "Stoneware, 350ml", "category": "kitchen", "price": 14.5, "stock": 120, "status": "active"},
			{"id": "p-101", "name": "Linen apron", "description": "Washed linen with pockets", "category": "kitchen", "price": 32.0, "stock": 18, "status": "active"},
			{"id": "p-102", "name": "Desk lamp", "description": "Adjustable brass arm", "category": "home", "price": 89.0, "stock": 0, "status": "inactive"},
			{"id": "p-103", "name": "Notebook set", "description": "Three dotted notebooks", "category": "office", "price": 21.0, "stock": 64, "status": "active"},
			{"id": "p-104", "name": "Wool throw", "description": "Merino blend blanket", "category": "home", "price": 120.0, "stock": 7, "status": "draft"},
		},
		"orders": {
			{"id": "o-2001", "customer": map[string]any{"name": "Ana Ruiz", "email": "ana@example.com"}, "total": 46.5, "status": "pending", "createdAt": "2026-09-30T10:12:00Z"},
			{"id": "o-2002", "customer": map[string]any{"name": "Ben Okafor", "email": "ben@example.com"}, "total": 89.0, "status": "shipped", "createdAt": "2026-10-01T08:40:00Z"},
			{"id": "o-2003", "customer": map[string]any{"name": "Chloe Martin", "email": "chloe@example.com"}, "total": 141.0, "status": "processing", "createdAt": "2026-10-02T16:05:00Z"},
		},
		"users": {
			{"id": "u-1", "name": "Ana Ruiz", "email": "ana@example.com", "role": "buyer", "status": "active"},
			{"id": "u-2", "name": "Sam Lee", "email": "sam@example.com", "role": "seller", "status": "active"},
			{"id": "u-3", "name": "Root", "email": "root@example.com", "role": "admin", "status": "active"},
			{"id": "u-4", "name": "Spam Bot", "email": "bot@example.com", "role": "buyer", "status": "banned"},
		},
		"subscription_plans": {
			{"id": "basic", "name": "Basic", "description": "One storefront", "price": 9.0, "interval": "month", "isActive": true},
			{"id": "pro", "name": "Pro", "description": "Five storefronts and analytics", "price": 29.0, "interval": "month", "isActive": true},
			{"id": "legacy", "name": "Legacy annual", "description": "Grandfathered plan", "price": 199.0, "interval": "year", "isActive": false},
		},
	}
}
