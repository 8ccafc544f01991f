package model

import "github.com/shopspring/decimal"

type DashboardStats struct {
	TotalSales    int             `json:"total_vendas"`
	TotalRevenue  decimal.Decimal `json:"receita_total"`
	TotalUsers    int             `json:"total_usuarios"`
	TotalProducts int             `json:"total_produtos"`
	PendingSales  int             `json:"vendas_pendentes"`
	MonthRevenue  decimal.Decimal `json:"receita_mes"`
	MonthSales    int             `json:"vendas_mes"`
}

type DailySale struct {
	Date    string          `json:"data"`
	Sales   int             `json:"vendas"`
	Revenue decimal.Decimal `json:"receita"`
}

type TopProduct struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Sales   int             `json:"vendas"`
	Revenue decimal.Decimal `json:"receita"`
}

type RecentTransaction struct {
	ID            int64           `json:"id"`
	PurchaseCode  string          `json:"purchase_code"`
	PricePaid     decimal.Decimal `json:"price_paid"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     string          `json:"created_at"`
	ProductName   string          `json:"product_name"`
	Username      string          `json:"username"`
}

type DashboardResponse struct {
	Result
	Stats  DashboardStats `json:"stats"`
	Charts struct {
		DailySales  []DailySale  `json:"vendas_diarias"`
		TopProducts []TopProduct `json:"produtos_mais_vendidos"`
	} `json:"graficos"`
	RecentTransactions []RecentTransaction `json:"ultimas_transacoes"`
}

type PeriodSale struct {
	Date          string          `json:"data"`
	Quantity      int             `json:"quantidade"`
	Total         decimal.Decimal `json:"total"`
	AverageTicket decimal.Decimal `json:"ticket_medio"`
}

type SalesByPeriodResponse struct {
	Result
	Period string       `json:"periodo"`
	Sales  []PeriodSale `json:"vendas"`
}

type ProductRank struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Type          ProductType     `json:"type"`
	TotalSales    int             `json:"total_vendas"`
	TotalRevenue  decimal.Decimal `json:"receita_total"`
	AverageTicket decimal.Decimal `json:"ticket_medio"`
	PaidSales     int             `json:"vendas_pagas"`
	PendingSales  int             `json:"vendas_pendentes"`
}

type ProductRankingResponse struct {
	Result
	Ranking []ProductRank `json:"ranking"`
}

type TopUser struct {
	ID             int64           `json:"id"`
	Username       string          `json:"username"`
	Email          string          `json:"email"`
	RegisteredAt   string          `json:"cadastro_em"`
	TotalPurchases int             `json:"total_compras"`
	TotalSpent     decimal.Decimal `json:"total_gasto"`
	LastPurchase   string          `json:"ultima_compra"`
}

type TopUsersResponse struct {
	Result
	TopUsers []TopUser `json:"top_usuarios"`
}

type DaySale struct {
	Day     int             `json:"dia"`
	Sales   int             `json:"vendas"`
	Revenue decimal.Decimal `json:"receita"`
}

type PaymentMethodTotal struct {
	PaymentMethod string          `json:"payment_method"`
	Quantity      int             `json:"quantidade"`
	Total         decimal.Decimal `json:"total"`
}

type FinancialReportResponse struct {
	Result
	Period struct {
		Month string `json:"mes"`
		Year  string `json:"ano"`
	} `json:"periodo"`
	Summary struct {
		TotalTransactions int             `json:"total_transacoes"`
		ConfirmedRevenue  decimal.Decimal `json:"receita_confirmada"`
		PendingRevenue    decimal.Decimal `json:"receita_pendente"`
		AverageTicket     decimal.Decimal `json:"ticket_medio"`
		PaidSales         int             `json:"vendas_pagas"`
		PendingSales      int             `json:"vendas_pendentes"`
		CancelledSales    int             `json:"vendas_canceladas"`
	} `json:"resumo"`
	SalesByDay      []DaySale            `json:"vendas_por_dia"`
	ByPaymentMethod []PaymentMethodTotal `json:"por_metodo_pagamento"`
}
