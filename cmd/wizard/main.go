package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sms-storefront/internal/config"
	"sms-storefront/internal/util"
	"sms-storefront/internal/wizard"
)

// Drives one number acquisition against a running storefront:
// signup or login, pick service and country, lease a number, acknowledge
// payment and poll for the code.
func main() {
	server := flag.String("server", "http://localhost:8080", "Storefront base URL")
	name := flag.String("name", "", "Name for a new account; signs up when set, logs in otherwise")
	email := flag.String("email", "", "Account email")
	password := flag.String("password", "", "Account password")
	serviceID := flag.Int("service", 1, "Service id")
	countryID := flag.Int("country", 1, "Country id")
	payment := flag.String("payment", string(wizard.PaymentCryptomus), "Payment method: cryptomus|binance|paypal|mpesa|stripe")
	polls := flag.Int("polls", 5, "Code checks before giving up")
	interval := flag.Duration("interval", 2*time.Second, "Delay between code checks")
	flag.Parse()

	if env := os.Getenv("STOREFRONT_URL"); env != "" && !isFlagSet("server") {
		*server = env
	}
	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(1)
	}

	util.Init("development", config.GetEnv("LOG_LEVEL", "warn"), "console")
	defer util.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := wizard.NewAPIClient(*server, nil)
	if err != nil {
		util.Fatal("Failed to create API client", util.ErrorField(err))
	}

	if err := run(ctx, client, runOptions{
		name:      *name,
		email:     *email,
		password:  *password,
		serviceID: *serviceID,
		countryID: *countryID,
		payment:   wizard.PaymentMethod(*payment),
		polls:     *polls,
		interval:  *interval,
	}); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

type runOptions struct {
	name      string
	email     string
	password  string
	serviceID int
	countryID int
	payment   wizard.PaymentMethod
	polls     int
	interval  time.Duration
}

func run(ctx context.Context, client *wizard.APIClient, opts runOptions) error {
	if opts.name != "" {
		fmt.Println("[1] Signing up", opts.email)
		if _, err := client.Signup(ctx, opts.name, opts.email, opts.password); err != nil {
			return fmt.Errorf("signup: %w", err)
		}
	} else {
		fmt.Println("[1] Logging in", opts.email)
		if _, err := client.Login(ctx, opts.email, opts.password); err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	fmt.Println("[2] Loading catalog")
	services, err := client.Services(ctx)
	if err != nil {
		return fmt.Errorf("services: %w", err)
	}
	countries, err := client.Countries(ctx)
	if err != nil {
		return fmt.Errorf("countries: %w", err)
	}

	w := wizard.New(client, services, countries)
	if err := w.SelectService(opts.serviceID); err != nil {
		return err
	}
	if err := w.SelectCountry(opts.countryID); err != nil {
		return err
	}

	fmt.Println("[3] Requesting number")
	if err := w.RequestNumber(ctx); err != nil {
		return noticeError(w, err)
	}
	view := w.View()
	fmt.Printf("    number=%s request=%s\n", view.PhoneNumber, view.RequestID)

	fmt.Println("[4] Paying with", opts.payment)
	if err := w.ProceedToPayment(); err != nil {
		return err
	}
	if err := w.SelectPaymentMethod(opts.payment); err != nil {
		return err
	}
	if option, ok := wizard.LookupPaymentMethod(opts.payment); ok {
		fmt.Println("    " + option.Instructions)
	}
	if err := w.CompletePayment(); err != nil {
		return noticeError(w, err)
	}

	fmt.Println("[5] Waiting for SMS code")
	for attempt := 1; attempt <= opts.polls; attempt++ {
		code, err := w.CheckCode(ctx)
		if err != nil {
			return noticeError(w, err)
		}
		if code != "" {
			fmt.Println("    code:", code)
			return nil
		}
		fmt.Printf("    attempt %d: %s\n", attempt, w.View().Notice.Message)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(opts.interval):
		}
	}
	return errors.New("no SMS code received")
}

func noticeError(w *wizard.Wizard, err error) error {
	if n := w.View().Notice; n != nil {
		return fmt.Errorf("%s: %w", n.Message, err)
	}
	return err
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
