// Package seed loads placeholder dashboard data into Supabase.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/acmelabs/invoice_dashboard/internal/auth"
	"github.com/acmelabs/invoice_dashboard/internal/data"
	"github.com/acmelabs/invoice_dashboard/internal/logging"
	"github.com/acmelabs/invoice_dashboard/supabase/client"
)

//go:embed placeholder.yaml
var placeholder []byte

// invoiceNamespace derives stable invoice ids so reseeding updates rows instead of duplicating them.
var invoiceNamespace = uuid.MustParse("6f1c2a51-9a43-4c8e-9d0e-3f3a1b7e2c10")

// Data is a complete seed set. User passwords are plain text until seeded.
type Data struct {
	Users     []data.User     `yaml:"users"`
	Customers []data.Customer `yaml:"customers"`
	Invoices  []data.Invoice  `yaml:"invoices"`
	Revenue   []data.Revenue  `yaml:"revenue"`
}

// Placeholder returns the built-in seed data.
func Placeholder() (*Data, error) {
	return parse(placeholder)
}

// Load reads seed data from a YAML file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (d *Data) validate() error {
	customers := make(map[string]bool, len(d.Customers))
	for _, c := range d.Customers {
		customers[strings.ToLower(c.ID)] = true
	}
	for i, inv := range d.Invoices {
		if !customers[strings.ToLower(inv.CustomerID)] {
			return fmt.Errorf("invoice %d: unknown customer %s", i, inv.CustomerID)
		}
		if inv.Amount < 0 {
			return fmt.Errorf("invoice %d: negative amount", i)
		}
		if inv.Status != data.StatusPending && inv.Status != data.StatusPaid {
			return fmt.Errorf("invoice %d: invalid status %q", i, inv.Status)
		}
	}
	return nil
}

// Summary counts seeded rows per table.
type Summary struct {
	Users     int
	Customers int
	Invoices  int
	Revenue   int
}

// Seeder writes seed data through the REST client.
type Seeder struct {
	client *client.Client
	logger *logging.Logger
	hash   func(string) (string, error)
}

// NewSeeder creates a seeder.
func NewSeeder(c *client.Client, logger *logging.Logger) *Seeder {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Seeder{client: c, logger: logger, hash: auth.HashPassword}
}

// Seed upserts users, customers, invoices and revenue in that order.
func (s *Seeder) Seed(ctx context.Context, d *Data) (Summary, error) {
	var sum Summary

	users := make([]data.User, len(d.Users))
	for i, u := range d.Users {
		hash, err := s.hash(u.Password)
		if err != nil {
			return sum, fmt.Errorf("user %s: %w", u.Email, err)
		}
		u.Password = hash
		users[i] = u
	}

	invoices := make([]data.Invoice, len(d.Invoices))
	for i, inv := range d.Invoices {
		if inv.ID == "" {
			inv.ID = InvoiceID(inv)
		}
		invoices[i] = inv
	}

	steps := []struct {
		table      string
		onConflict string
		rows       any
		count      *int
		n          int
	}{
		{"users", "id", users, &sum.Users, len(users)},
		{"customers", "id", d.Customers, &sum.Customers, len(d.Customers)},
		{"invoices", "id", invoices, &sum.Invoices, len(invoices)},
		{"revenue", "month", d.Revenue, &sum.Revenue, len(d.Revenue)},
	}
	for _, step := range steps {
		if step.n == 0 {
			continue
		}
		resp, err := s.client.From(step.table).Upsert(step.onConflict).ExecuteInsert(ctx, step.rows)
		if err == nil {
			err = resp.Error()
		}
		if err != nil {
			return sum, fmt.Errorf("seed %s: %w", step.table, err)
		}
		*step.count = step.n
		s.logger.WithContext(ctx).WithField("table", step.table).WithField("rows", step.n).Info("Seeded table")
	}
	return sum, nil
}

// InvoiceID derives a stable id from the invoice contents.
func InvoiceID(inv data.Invoice) string {
	key := strings.ToLower(inv.CustomerID) + "|" + inv.Date + "|" + strconv.FormatInt(inv.Amount, 10) + "|" + inv.Status
	return uuid.NewSHA1(invoiceNamespace, []byte(key)).String()
}
