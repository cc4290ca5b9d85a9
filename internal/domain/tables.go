package domain

var Tables = []interface{}{
	// Catalog
	&Category{},
	&Product{},
	&ProductPricing{},
	// Accounts
	&Client{},
	&Admin{},
	// Commerce
	&Cart{},
	&CartItem{},
	&Order{},
	&OrderItem{},
	&OutboxEvent{},
}
