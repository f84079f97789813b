// Command clinicdesk is a local front desk tool over the clinic core:
// patient registry, service catalog, quotes, bills and payments, stored
// in an on-device SQLite database.
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/clinicdesk/clinicdesk/internal/domain"
	"github.com/clinicdesk/clinicdesk/internal/export"
	"github.com/clinicdesk/clinicdesk/internal/models"
	"github.com/clinicdesk/clinicdesk/internal/money"
	"github.com/clinicdesk/clinicdesk/internal/service"
	"github.com/clinicdesk/clinicdesk/internal/storage/sqlite"
	"github.com/clinicdesk/clinicdesk/pkg/logging"
)

// env holds the open store and services for the duration of one command.
type appEnv struct {
	store    *sqlite.SQLiteStore
	registry *service.RegistryService
	quotes   *service.QuoteService
	bills    *service.BillService
}

var env appEnv

func main() {
	logging.Setup()

	app := &cli.App{
		Name:  "clinicdesk",
		Usage: "manage patients, services, quotes and bills",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "path to the clinic database",
				Value:   "./data/clinic.db",
				EnvVars: []string{"DB_PATH"},
			},
			&cli.IntFlag{
				Name:    "due-days",
				Usage:   "default days until a bill is due",
				Value:   30,
				EnvVars: []string{"DUE_DAYS"},
			},
		},
		Before: func(c *cli.Context) error {
			store, err := sqlite.New(c.String("db"))
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			env = appEnv{
				store:    store,
				registry: service.NewRegistryService(store),
				quotes:   service.NewQuoteService(store),
				bills:    service.NewBillService(store, service.DueInDays(c.Int("due-days"))),
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if env.store != nil {
				return env.store.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			patientCommand(),
			categoryCommand(),
			serviceCommand(),
			quoteCommand(),
			billCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func patientCommand() *cli.Command {
	return &cli.Command{
		Name:  "patient",
		Usage: "manage patient records",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "register a new patient",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "phone"},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "address"},
					&cli.StringFlag{Name: "notes"},
				},
				Action: func(c *cli.Context) error {
					p, err := env.registry.CreatePatient(c.Context, service.PatientInput{
						Name:    c.String("name"),
						Phone:   c.String("phone"),
						Email:   c.String("email"),
						Address: c.String("address"),
						Notes:   c.String("notes"),
					})
					if err != nil {
						return err
					}
					fmt.Println(p.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list all patients",
				Action: func(c *cli.Context) error {
					patients, err := env.registry.ListPatients(c.Context)
					if err != nil {
						return err
					}
					w := newTable()
					fmt.Fprintln(w, "ID\tNAME\tPHONE\tEMAIL")
					for _, p := range patients {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Phone, p.Email)
					}
					return w.Flush()
				},
			},
		},
	}
}

func categoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "category",
		Usage: "manage catalog categories",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "add a category",
				Flags: []cli.Flag{&cli.StringFlag{Name: "name", Required: true}},
				Action: func(c *cli.Context) error {
					cat, err := env.registry.CreateCategory(c.Context, c.String("name"))
					if err != nil {
						return err
					}
					fmt.Println(cat.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list categories",
				Action: func(c *cli.Context) error {
					categories, err := env.registry.ListCategories(c.Context)
					if err != nil {
						return err
					}
					w := newTable()
					fmt.Fprintln(w, "ID\tNAME")
					for _, cat := range categories {
						fmt.Fprintf(w, "%s\t%s\n", cat.ID, cat.Name)
					}
					return w.Flush()
				},
			},
		},
	}
}

func serviceCommand() *cli.Command {
	return &cli.Command{
		Name:  "service",
		Usage: "manage the service catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "add a service to the catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "price", Required: true, Usage: "list price, e.g. 100.00"},
					&cli.StringFlag{Name: "category"},
					&cli.StringFlag{Name: "description"},
				},
				Action: func(c *cli.Context) error {
					price, err := money.Parse(c.String("price"))
					if err != nil {
						return err
					}
					svc, err := env.registry.CreateService(c.Context, service.ServiceInput{
						CategoryID:  c.String("category"),
						Name:        c.String("name"),
						Description: c.String("description"),
						Price:       price,
					})
					if err != nil {
						return err
					}
					fmt.Println(svc.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list catalog services",
				Action: func(c *cli.Context) error {
					services, err := env.registry.ListServices(c.Context)
					if err != nil {
						return err
					}
					w := newTable()
					fmt.Fprintln(w, "ID\tNAME\tPRICE")
					for _, svc := range services {
						fmt.Fprintf(w, "%s\t%s\t%s\n", svc.ID, svc.Name, money.Format(svc.Price))
					}
					return w.Flush()
				},
			},
		},
	}
}

// documentFlags are shared by quote create and bill create.
func documentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "patient", Required: true, Usage: "patient ID"},
		&cli.StringSliceFlag{
			Name:  "item",
			Usage: "service line as serviceID:qty[:discount], repeatable",
		},
		&cli.Float64Flag{Name: "discount-percent", Usage: "document discount percentage (0-100)"},
		&cli.StringFlag{Name: "discount-amount", Usage: "fixed document discount, e.g. 25.00"},
		&cli.Float64Flag{Name: "tax", Usage: "tax percentage"},
		&cli.StringFlag{Name: "notes"},
	}
}

// parseItems parses repeated --item serviceID:qty[:discount] flags.
func parseItems(raw []string) ([]service.LineItemInput, error) {
	items := make([]service.LineItemInput, 0, len(raw))
	for _, arg := range raw {
		parts := strings.Split(arg, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid item %q, want serviceID:qty[:discount]", arg)
		}
		qty, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in item %q: %w", arg, err)
		}
		item := service.LineItemInput{ServiceID: parts[0], Quantity: qty}
		if len(parts) == 3 {
			discount, err := money.Parse(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid discount in item %q: %w", arg, err)
			}
			item.Discount = discount
		}
		items = append(items, item)
	}
	return items, nil
}

// parseDiscount resolves the document discount flags into a DiscountSpec.
func parseDiscount(c *cli.Context) (models.DiscountSpec, error) {
	if c.IsSet("discount-percent") && c.IsSet("discount-amount") {
		return models.DiscountSpec{}, fmt.Errorf("use either --discount-percent or --discount-amount, not both")
	}
	if c.IsSet("discount-percent") {
		return models.DiscountSpec{Kind: models.DiscountPercentage, Percent: c.Float64("discount-percent")}, nil
	}
	if c.IsSet("discount-amount") {
		amount, err := money.Parse(c.String("discount-amount"))
		if err != nil {
			return models.DiscountSpec{}, err
		}
		return models.DiscountSpec{Kind: models.DiscountFixed, Amount: amount}, nil
	}
	return models.DiscountSpec{Kind: models.DiscountNone}, nil
}

func printWarnings(warnings service.Warnings) {
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
}

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "manage quotes",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "create a draft quote",
				Flags: append(documentFlags(),
					&cli.StringFlag{Name: "title"},
					&cli.IntFlag{Name: "valid-days", Value: 30, Usage: "days the quote stays valid"},
				),
				Action: func(c *cli.Context) error {
					items, err := parseItems(c.StringSlice("item"))
					if err != nil {
						return err
					}
					discount, err := parseDiscount(c)
					if err != nil {
						return err
					}
					quote, warnings, err := env.quotes.CreateQuote(c.Context, service.QuoteInput{
						PatientID:  c.String("patient"),
						Title:      c.String("title"),
						Items:      items,
						Discount:   discount,
						TaxPercent: c.Float64("tax"),
						ValidUntil: time.Now().AddDate(0, 0, c.Int("valid-days")).Unix(),
						Notes:      c.String("notes"),
					})
					if err != nil {
						return err
					}
					printWarnings(warnings)
					fmt.Println(quote.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list quotes",
				Flags: []cli.Flag{&cli.StringFlag{Name: "patient"}},
				Action: func(c *cli.Context) error {
					quotes, err := env.quotes.ListQuotes(c.Context, c.String("patient"))
					if err != nil {
						return err
					}
					w := newTable()
					fmt.Fprintln(w, "ID\tPATIENT\tSTATUS\tTOTAL\tVALID UNTIL")
					for _, q := range quotes {
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
							q.ID, q.PatientID, q.Status, money.Format(q.Total), formatDate(q.ValidUntil))
					}
					return w.Flush()
				},
			},
			{
				Name:      "show",
				Usage:     "show one quote",
				ArgsUsage: "<quote-id>",
				Action: func(c *cli.Context) error {
					quote, err := env.quotes.GetQuote(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					return printJSON(quote)
				},
			},
			{
				Name:      "status",
				Usage:     "move a quote to a new status",
				ArgsUsage: "<quote-id> <draft|sent|accepted|rejected|cancelled|expired>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("want <quote-id> <status>")
					}
					quote, err := env.quotes.TransitionQuote(c.Context,
						c.Args().Get(0), models.QuoteStatus(c.Args().Get(1)))
					if err != nil {
						return err
					}
					fmt.Printf("%s is now %s\n", quote.ID, quote.Status)
					return nil
				},
			},
			{
				Name:      "convert",
				Usage:     "convert an accepted quote into a bill",
				ArgsUsage: "<quote-id>",
				Action: func(c *cli.Context) error {
					bill, err := env.bills.ConvertQuote(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					fmt.Println(bill.ID)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a draft quote",
				ArgsUsage: "<quote-id>",
				Action: func(c *cli.Context) error {
					return env.quotes.DeleteQuote(c.Context, c.Args().First())
				},
			},
		},
	}
}

func billCommand() *cli.Command {
	return &cli.Command{
		Name:  "bill",
		Usage: "manage bills and payments",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "create a draft bill",
				Flags: append(documentFlags(),
					&cli.TimestampFlag{Name: "due", Layout: "2006-01-02", Usage: "due date (default: due-days from now)"},
				),
				Action: func(c *cli.Context) error {
					items, err := parseItems(c.StringSlice("item"))
					if err != nil {
						return err
					}
					discount, err := parseDiscount(c)
					if err != nil {
						return err
					}
					in := service.BillInput{
						PatientID:  c.String("patient"),
						Items:      items,
						Discount:   discount,
						TaxPercent: c.Float64("tax"),
						Notes:      c.String("notes"),
					}
					if due := c.Timestamp("due"); due != nil && !due.IsZero() {
						in.DueDate = due.Unix()
					}
					bill, warnings, err := env.bills.CreateBill(c.Context, in)
					if err != nil {
						return err
					}
					printWarnings(warnings)
					fmt.Println(bill.ID)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "list bills",
				Flags: []cli.Flag{&cli.StringFlag{Name: "patient"}},
				Action: func(c *cli.Context) error {
					bills, err := env.bills.ListBills(c.Context, c.String("patient"))
					if err != nil {
						return err
					}
					now := time.Now()
					w := newTable()
					fmt.Fprintln(w, "ID\tPATIENT\tSTATUS\tTOTAL\tBALANCE\tDUE")
					for i := range bills {
						b := &bills[i]
						due := formatDate(b.DueDate)
						if domain.IsOverdue(b, now) {
							due += " (overdue)"
						}
						fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
							b.ID, b.PatientID, b.Status, money.Format(b.Total), money.Format(b.Balance), due)
					}
					return w.Flush()
				},
			},
			{
				Name:      "show",
				Usage:     "show one bill",
				ArgsUsage: "<bill-id>",
				Action: func(c *cli.Context) error {
					bill, err := env.bills.GetBill(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					return printJSON(bill)
				},
			},
			{
				Name:      "status",
				Usage:     "move a bill to a new status",
				ArgsUsage: "<bill-id> <pending|partially_paid|paid|overdue|cancelled>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("want <bill-id> <status>")
					}
					bill, err := env.bills.TransitionBill(c.Context,
						c.Args().Get(0), models.BillStatus(c.Args().Get(1)))
					if err != nil {
						return err
					}
					fmt.Printf("%s is now %s\n", bill.ID, bill.Status)
					return nil
				},
			},
			{
				Name:      "pay",
				Usage:     "apply a payment to a bill",
				ArgsUsage: "<bill-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "amount", Required: true, Usage: "payment amount, e.g. 100.00"},
					&cli.StringFlag{Name: "method", Value: string(models.PaymentMethodCash)},
					&cli.StringFlag{Name: "reference"},
					&cli.StringFlag{Name: "notes"},
				},
				Action: func(c *cli.Context) error {
					amount, err := money.Parse(c.String("amount"))
					if err != nil {
						return err
					}
					bill, err := env.bills.ApplyPayment(c.Context, c.Args().First(), service.PaymentInput{
						Amount:    amount,
						Method:    models.PaymentMethod(c.String("method")),
						Reference: c.String("reference"),
						Notes:     c.String("notes"),
					})
					if err != nil {
						return err
					}
					fmt.Printf("balance %s, status %s\n", money.Format(bill.Balance), bill.Status)
					return nil
				},
			},
			{
				Name:      "unpay",
				Usage:     "delete a payment and recompute the ledger",
				ArgsUsage: "<bill-id> <payment-id>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("want <bill-id> <payment-id>")
					}
					bill, err := env.bills.DeletePayment(c.Context, c.Args().Get(0), c.Args().Get(1))
					if err != nil {
						return err
					}
					fmt.Printf("balance %s, status %s\n", money.Format(bill.Balance), bill.Status)
					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a draft bill",
				ArgsUsage: "<bill-id>",
				Action: func(c *cli.Context) error {
					return env.bills.DeleteBill(c.Context, c.Args().First())
				},
			},
		},
	}
}

func exportCommand() *cli.Command {
	clinicFlags := []cli.Flag{
		&cli.StringFlag{Name: "clinic-name", Value: "Clinicdesk", EnvVars: []string{"CLINIC_NAME"}},
		&cli.StringFlag{Name: "clinic-address", EnvVars: []string{"CLINIC_ADDRESS"}},
		&cli.StringFlag{Name: "clinic-phone", EnvVars: []string{"CLINIC_PHONE"}},
	}
	clinicInfo := func(c *cli.Context) export.ClinicInfo {
		return export.ClinicInfo{
			Name:    c.String("clinic-name"),
			Address: c.String("clinic-address"),
			Phone:   c.String("clinic-phone"),
		}
	}

	return &cli.Command{
		Name:  "export",
		Usage: "export documents",
		Subcommands: []*cli.Command{
			{
				Name:      "quote",
				Usage:     "render a quote as PDF",
				ArgsUsage: "<quote-id>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "out", Required: true, Usage: "output file"},
				}, clinicFlags...),
				Action: func(c *cli.Context) error {
					quote, err := env.quotes.GetQuote(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					patient, err := env.registry.GetPatient(c.Context, quote.PatientID)
					if err != nil {
						return err
					}
					data, err := export.QuotePDF(clinicInfo(c), quote, patient)
					if err != nil {
						return err
					}
					return os.WriteFile(c.String("out"), data, 0644)
				},
			},
			{
				Name:      "bill",
				Usage:     "render a bill as PDF",
				ArgsUsage: "<bill-id>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "out", Required: true, Usage: "output file"},
				}, clinicFlags...),
				Action: func(c *cli.Context) error {
					bill, err := env.bills.GetBill(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					patient, err := env.registry.GetPatient(c.Context, bill.PatientID)
					if err != nil {
						return err
					}
					data, err := export.BillPDF(clinicInfo(c), bill, patient)
					if err != nil {
						return err
					}
					return os.WriteFile(c.String("out"), data, 0644)
				},
			},
			{
				Name:      "json",
				Usage:     "dump a collection as a JSON array",
				ArgsUsage: "<patients|services|categories|quotes|bills>",
				Action: func(c *cli.Context) error {
					switch c.Args().First() {
					case "patients":
						v, err := env.registry.ListPatients(c.Context)
						if err != nil {
							return err
						}
						return printJSON(v)
					case "services":
						v, err := env.registry.ListServices(c.Context)
						if err != nil {
							return err
						}
						return printJSON(v)
					case "categories":
						v, err := env.registry.ListCategories(c.Context)
						if err != nil {
							return err
						}
						return printJSON(v)
					case "quotes":
						v, err := env.quotes.ListQuotes(c.Context, "")
						if err != nil {
							return err
						}
						return printJSON(v)
					case "bills":
						v, err := env.bills.ListBills(c.Context, "")
						if err != nil {
							return err
						}
						return printJSON(v)
					default:
						return fmt.Errorf("unknown collection %q", c.Args().First())
					}
				},
			},
		},
	}
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDate(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format("2006-01-02")
}
