package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alextreichler/magicworld/internal/api"
	"github.com/alextreichler/magicworld/internal/config"
	"github.com/alextreichler/magicworld/internal/forms"
	"github.com/alextreichler/magicworld/internal/listing"
	"github.com/alextreichler/magicworld/internal/models"
)

const usage = "expected 'slug', 'orders' or 'contacts' subcommand"

func main() {
	slugCmd := flag.NewFlagSet("slug", flag.ExitOnError)

	ordersCmd := flag.NewFlagSet("orders", flag.ExitOnError)
	ordersStatus := ordersCmd.String("status", "pending", "Filter: all, paid, pending, delivered, cancelled")
	ordersQuery := ordersCmd.String("q", "", "Search product, email or Telegram")
	ordersEmail := ordersCmd.String("email", "", "Admin email")

	contactsCmd := flag.NewFlagSet("contacts", flag.ExitOnError)
	contactsFilter := contactsCmd.String("filter", "unread", "Filter: all, read, unread")
	contactsEmail := contactsCmd.String("email", "", "Admin email")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "slug":
		slugCmd.Parse(os.Args[2:])
		name := strings.Join(slugCmd.Args(), " ")
		if name == "" {
			fmt.Println("usage: slug <product name>")
			os.Exit(1)
		}
		fmt.Println(forms.DeriveSlug(name))
	case "orders":
		ordersCmd.Parse(os.Args[2:])
		client, token := login(*ordersEmail)
		listOrders(client, token, *ordersQuery, *ordersStatus)
	case "contacts":
		contactsCmd.Parse(os.Args[2:])
		client, token := login(*contactsEmail)
		listContacts(client, token, *contactsFilter)
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
}

// login signs in against the API from the server's config. The password
// comes from MAGICWORLD_ADMIN_PASSWORD so it stays out of shell history.
func login(email string) (*api.Client, string) {
	password := os.Getenv("MAGICWORLD_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("-email and MAGICWORLD_ADMIN_PASSWORD are required")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeout)
	defer cancel()
	token, err := client.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		log.Fatalf("Login failed: %s", api.Message(err, err.Error()))
	}
	return client, token
}

func listOrders(client *api.Client, token, query, status string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orders, err := client.ListOrders(ctx, token)
	if err != nil {
		log.Fatalf("Failed to load orders: %s", api.Message(err, err.Error()))
	}
	orders = listing.Orders(orders, query, listing.Normalize(status, listing.OrderFilters))

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tPRODUCT\tPLAN\tPRICE\tCONTACT\tPAYMENT\tORDER")
	for _, o := range orders {
		contact := o.Email
		if contact == "" {
			contact = o.Telegram
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t₹%.2f\t%s\t%s\t%s\n",
			o.ID, o.CreatedAt.Format("2006-01-02 15:04"), o.ProductName, o.Plan, o.Price, contact, o.PaymentStatus, o.OrderStatus)
	}
	tw.Flush()
	fmt.Printf("%d orders\n", len(orders))
}

func listContacts(client *api.Client, token, filter string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	msgs, err := client.ListContacts(ctx, token)
	if err != nil {
		log.Fatalf("Failed to load messages: %s", api.Message(err, err.Error()))
	}
	msgs = listing.Contacts(msgs, "", listing.Normalize(filter, listing.ContactFilters))

	for _, m := range msgs {
		mark := " "
		if !m.Read {
			mark = "*"
		}
		fmt.Printf("%s %s  %s <%s>\n    %s\n", mark, m.CreatedAt.Format("2006-01-02 15:04"), m.Name, m.Email, m.Message)
	}
	fmt.Printf("%d messages\n", len(msgs))
}
