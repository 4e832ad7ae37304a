package data

// Invoice statuses.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// User is a dashboard account. Password holds a bcrypt hash.
type User struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	Password string `json:"password" yaml:"password"`
}

// Customer is a billed party.
type Customer struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Email    string `json:"email" yaml:"email"`
	ImageURL string `json:"image_url" yaml:"image_url"`
}

// Invoice is a stored invoice row. Amount is in cents.
type Invoice struct {
	ID         string `json:"id,omitempty" yaml:"id"`
	CustomerID string `json:"customer_id" yaml:"customer_id"`
	Amount     int64  `json:"amount" yaml:"amount"`
	Status     string `json:"status" yaml:"status"`
	Date       string `json:"date" yaml:"date"`
}

// Revenue is one month of the revenue chart.
type Revenue struct {
	Month   string `json:"month" yaml:"month"`
	Revenue int64  `json:"revenue" yaml:"revenue"`
}

// LatestInvoice is a row of the latest invoices card. Amount is already formatted.
type LatestInvoice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Email    string `json:"email"`
	Amount   string `json:"amount"`
}

// InvoicesTable is a row of the searchable invoices table.
type InvoicesTable struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ImageURL   string `json:"image_url"`
	Date       string `json:"date"`
	Amount     int64  `json:"amount"`
	Status     string `json:"status"`
}

// InvoiceForm prefills the edit form. Amount is in dollars.
type InvoiceForm struct {
	ID         string  `json:"id"`
	CustomerID string  `json:"customer_id"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
}

// CustomerField is a customer select option.
type CustomerField struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomersTableType is a raw row of the customers table; totals are in cents.
type CustomersTableType struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ImageURL      string `json:"image_url"`
	TotalInvoices int64  `json:"total_invoices"`
	TotalPending  int64  `json:"total_pending"`
	TotalPaid     int64  `json:"total_paid"`
}

// FormattedCustomersTable is a customers table row with display totals.
type FormattedCustomersTable struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	ImageURL      string `json:"image_url"`
	TotalInvoices int64  `json:"total_invoices"`
	TotalPending  string `json:"total_pending"`
	TotalPaid     string `json:"total_paid"`
}

// CardData feeds the summary cards.
type CardData struct {
	NumberOfInvoices     int64  `json:"number_of_invoices"`
	NumberOfCustomers    int64  `json:"number_of_customers"`
	TotalPaidInvoices    string `json:"total_paid_invoices"`
	TotalPendingInvoices string `json:"total_pending_invoices"`
}
