package actions

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/acmelabs/invoice_dashboard/internal/format"
)

// Field messages shown next to the form inputs.
const (
	msgCustomer = "Please select a customer."
	msgAmount   = "Please enter an amount greater than $0."
	msgStatus   = "Please select an invoice status."
	msgID       = "Missing invoice id."
	msgNotFound = "Invoice not found."
)

var fieldMessages = map[string]string{
	"customerId": msgCustomer,
	"amount":     msgAmount,
	"status":     msgStatus,
}

type invoiceInput struct {
	CustomerID  string `form:"customerId" validate:"required"`
	AmountCents int64  `form:"amount" validate:"gt=0"`
	Status      string `form:"status" validate:"required,oneof=pending paid"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseInvoiceForm coerces the raw form and returns per-field messages for invalid fields.
// An unparsable or out-of-range amount counts as zero.
func parseInvoiceForm(v *validator.Validate, form Form) (invoiceInput, map[string][]string) {
	in := invoiceInput{
		CustomerID: strings.TrimSpace(form.Get("customerId")),
		Status:     strings.TrimSpace(form.Get("status")),
	}
	if d, err := format.ParseDollars(form.Get("amount")); err == nil {
		if cents, err := format.DollarsToCents(d); err == nil {
			in.AmountCents = cents
		}
	}

	err := v.Struct(in)
	if err == nil {
		return in, nil
	}

	fields := make(map[string][]string)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["form"] = []string{err.Error()}
		return in, fields
	}
	for _, fe := range verrs {
		name := fe.Field()
		if msg, ok := fieldMessages[name]; ok {
			fields[name] = appendOnce(fields[name], msg)
		}
	}
	return in, fields
}

func appendOnce(list []string, s string) []string {
	for _, existing := range list {
		if existing == s {
			return list
		}
	}
	return append(list, s)
}
