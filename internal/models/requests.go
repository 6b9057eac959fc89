package models

// RegisterRequest представляет тело запроса на регистрацию.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest представляет тело запроса на вход.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse представляет тело ответа при успешном входе.
type LoginResponse struct {
	Token string `json:"token"`
}

// UpdatePasswordRequest представляет тело запроса на смену пароля.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// CashflowEntryRequest представляет тело запроса на создание/обновление
// записи движения средств. Поле ID используется только при обновлении.
type CashflowEntryRequest struct {
	ID          int64   `json:"id,omitempty"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Payment     string  `json:"payment"`
	Amount      float64 `json:"amount"`
	Categorie   string  `json:"categorie"`
	Note        string  `json:"note,omitempty"`
}

// BusinessContactRequest представляет тело запроса на создание/обновление
// контакта (поставщик или заказчик).
type BusinessContactRequest struct {
	ID          int64  `json:"id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	ICO         string `json:"ico"`
	BankAccount string `json:"bankAccount"`
	Note        string `json:"note,omitempty"`
}

// DeleteRequest представляет тело запроса на удаление записи по ID.
type DeleteRequest struct {
	ID int64 `json:"id"`
}

// DatasetSubject — одна пара "набор данных + subject" в запросе экспорта.
// Явный список объектов вместо склейки строк через запятую.
type DatasetSubject struct {
	Dataset string `json:"dataset"`
	Subject string `json:"subject"`
}

// ExportRequest представляет тело запроса на экспорт.
type ExportRequest struct {
	DataSets []DatasetSubject `json:"dataSets"`
	Format   string           `json:"format"`
}

// InvoiceRequest представляет тело запроса на создание фактуры.
// Одна фактура раскладывается в несколько строк — по строке на позицию.
type InvoiceRequest struct {
	InvoiceDetails InvoiceDetails `json:"invoiceDetails"`
	SupplierInfo   InvoiceParty   `json:"supplierInfo"`
	CustomerInfo   InvoiceParty   `json:"customerInfo"`
	InvoiceItems   []InvoiceItem  `json:"invoiceItems"`
	Totals         InvoiceTotals  `json:"totals"`
}

// InvoiceDetails — реквизиты фактуры.
type InvoiceDetails struct {
	InvoiceNumber string `json:"invoiceNumber"`
	CreatedDate   string `json:"createdDate"` // формат "dd.mm.yyyy"
	DueDate       string `json:"dueDate,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// InvoiceParty — сторона фактуры (поставщик или заказчик).
type InvoiceParty struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	ICO         string `json:"ico"`
	DIC         string `json:"dic"`
	Email       string `json:"email,omitempty"`
	Website     string `json:"website,omitempty"`
	IBAN        string `json:"iban,omitempty"`
	SWIFT       string `json:"swift,omitempty"`
	BankAccount string `json:"bankAccount,omitempty"`
}

// InvoiceItem — одна позиция фактуры.
type InvoiceItem struct {
	Index       int     `json:"index"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	VatRate     float64 `json:"vatRate"`
	Total       float64 `json:"total"`
	VatAmount   float64 `json:"vatAmount"`
	Type        string  `json:"type,omitempty"` // issued / received
}

// InvoiceTotals — итоговые суммы фактуры.
type InvoiceTotals struct {
	TotalWithoutVat float64 `json:"totalWithoutVat"`
	TotalVat        float64 `json:"totalVat"`
	TotalToPay      float64 `json:"totalToPay"`
	PaidAmount      float64 `json:"paidAmount"`
	BalanceDue      float64 `json:"balanceDue"`
}
