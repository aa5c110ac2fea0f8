package model

// All returns every persisted model in dependency order, for migrations.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&Review{},
	}
}
