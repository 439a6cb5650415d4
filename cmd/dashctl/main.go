// Command dashctl prints the finance cockpit of a running dashboard API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/locvowork/bi_dashboard/internal/config"
	"github.com/locvowork/bi_dashboard/internal/financeapi"
)

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func main() {
	if err := config.LoadEnvConfig(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.DefaultEnvConfig

	baseURL := flag.String("url", cfg.FINANCE_API_URL, "Dashboard API base URL")
	timeout := flag.Duration("timeout", cfg.FINANCE_API_TIMEOUT, "Per request timeout")
	dateRange := flag.String("date-range", "", "Date range: all, ytd, qtd, mtd, last3months, last6months, last12months")
	dateStart := flag.String("date-start", "", "Explicit start date (YYYY-MM-DD)")
	dateEnd := flag.String("date-end", "", "Explicit end date (YYYY-MM-DD)")
	anchor := flag.String("anchor", "", "Override the reporting anchor month (YYYY-MM)")
	countries := flag.String("countries", "", "Comma separated countries")
	channels := flag.String("channels", "", "Comma separated channels")
	statuses := flag.String("statuses", "", "Comma separated statuses")
	flag.Parse()

	client := financeapi.NewClient(*baseURL, *timeout)
	cockpit, err := client.FetchCockpit(context.Background(), financeapi.Filters{
		DateRange: *dateRange,
		DateStart: *dateStart,
		DateEnd:   *dateEnd,
		Anchor:    *anchor,
		Countries: splitList(*countries),
		Channels:  splitList(*channels),
		Statuses:  splitList(*statuses),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", financeapi.ErrorMessage(err))
		os.Exit(1)
	}

	fmt.Println("KPIs")
	fmt.Println(strings.Repeat("-", 50))
	for _, k := range cockpit.Dashboard.KPIs {
		fmt.Printf("%-28s %14.2f %s\n", k.Name, k.Value, k.Unit)
	}

	fmt.Printf("\nAging (%d open receivables, %d open payables)\n", len(cockpit.Receivables), len(cockpit.Payables))
	fmt.Println(strings.Repeat("-", 50))
	for _, b := range cockpit.Dashboard.Aging {
		fmt.Printf("%-28s %14.2f %4d\n", b.Name, b.Amount, b.Count)
	}

	fmt.Printf("\nCountries: %s\n", strings.Join(cockpit.Options.Countries, ", "))
	fmt.Printf("Channels:  %s\n", strings.Join(cockpit.Options.Channels, ", "))
}
