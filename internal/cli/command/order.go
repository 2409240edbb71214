package command

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/lingvo-go/internal/cli/output"
	"github.com/yndnr/lingvo-go/internal/core/domain"
)

// OrderCommand orders a translation and prints where to pay.
func OrderCommand() *cli.Command {
	return &cli.Command{
		Name:      "order",
		Usage:     "Order a translation",
		ArgsUsage: "TEXT... (or - to read stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "from", Aliases: []string{"f"}, Usage: "Source language", Value: "en"},
			&cli.StringFlag{Name: "to", Aliases: []string{"t"}, Usage: "Target language", Value: "uk"},
			&cli.BoolFlag{Name: "estimate", Usage: "Only print the price estimate"},
			&cli.BoolFlag{Name: "languages", Usage: "List supported languages"},
		},
		Action: order,
	}
}

func order(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}

	if c.Bool("languages") {
		t := &output.Table{Headers: []string{"CODE", "LANGUAGE"}}
		for _, l := range domain.Languages {
			t.AddRow(l.Code, l.Name)
		}
		return rt.render(tableValue{table: t, value: domain.Languages})
	}

	text, err := orderText(c, rt.in)
	if err != nil {
		return err
	}
	req, err := domain.NewOrderRequest(text, c.String("from"), c.String("to"))
	if err != nil {
		return err
	}

	price := rt.orders.EstimatePrice(req.SourceText)
	if c.Bool("estimate") {
		return rt.render(tableValue{
			table: output.KeyValue(
				"characters", strconv.Itoa(len([]rune(req.SourceText))),
				"estimate", fmt.Sprintf("%d UAH", price),
			),
			value: map[string]int{"characters": len([]rune(req.SourceText)), "estimate_uah": price},
		})
	}
	rt.printf("Estimated price: %d UAH\n", price)

	if _, err := rt.require(c.Context, domain.CapabilityNone); err != nil {
		return err
	}
	po, err := rt.orders.PlaceOrder(c.Context, req.SourceText, req.SourceLang, req.TargetLang)
	if err != nil {
		return rt.check(c.Context, err)
	}

	return rt.render(tableValue{
		table: output.KeyValue(
			"payment", strconv.FormatInt(po.PaymentID, 10),
			"reference", po.OrderReference,
			"amount", po.Amount.String()+" UAH",
			"languages", po.SourceLang+" -> "+po.TargetLang,
			"pay at", po.PaymentURL,
		),
		value: po,
	})
}

func orderText(c *cli.Context, in io.Reader) (string, error) {
	args := c.Args().Slice()
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return strings.Join(args, " "), nil
}

// PaymentCommand shows a payment, optionally waiting until it settles.
func PaymentCommand() *cli.Command {
	return &cli.Command{
		Name:      "payment",
		Usage:     "Show a payment",
		ArgsUsage: "ID",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "wait", Aliases: []string{"w"}, Usage: "Poll until the payment is no longer pending"},
			&cli.DurationFlag{Name: "interval", Value: 3 * time.Second, Usage: "Polling interval for --wait"},
			&cli.DurationFlag{Name: "max-wait", Value: 10 * time.Minute, Usage: "Give up waiting after this long"},
		},
		Action: payment,
	}
}

func payment(c *cli.Context) error {
	rt, err := mustRuntime(c)
	if err != nil {
		return err
	}
	id, err := parseID(c.Args().First())
	if err != nil {
		return err
	}
	if _, err := rt.require(c.Context, domain.CapabilityNone); err != nil {
		return err
	}

	var p *domain.Payment
	if c.Bool("wait") {
		p, err = waitForPayment(c.Context, rt, id, c.Duration("interval"), c.Duration("max-wait"))
	} else {
		p, err = rt.orders.GetPayment(c.Context, id)
	}
	if err != nil {
		return rt.check(c.Context, err)
	}
	return rt.render(paymentView{p})
}

// waitForPayment polls while the payment is pending. Errors end the wait;
// nothing is retried.
func waitForPayment(ctx context.Context, rt *Runtime, id int64, interval, limit time.Duration) (*domain.Payment, error) {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	spin := output.NewSpinner(rt.errOut, fmt.Sprintf("waiting for payment %d", id))
	spin.Start()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		p, err := rt.orders.GetPayment(ctx, id)
		if err != nil {
			spin.Fail("payment lookup failed")
			return nil, err
		}
		if p.Status != domain.PaymentPending {
			spin.Success(fmt.Sprintf("payment %d: %s", id, p.Status))
			return p, nil
		}
		select {
		case <-ctx.Done():
			spin.Fail("still pending")
			return p, nil
		case <-ticker.C:
		}
	}
}

type paymentView struct {
	p *domain.Payment
}

func (v paymentView) Value() any { return v.p }

func (v paymentView) Table() *output.Table {
	closed := ""
	if v.p.ClosedAt != nil {
		closed = v.p.ClosedAt.Local().Format(timeLayout)
	}
	return output.KeyValue(
		"id", strconv.FormatInt(v.p.ID, 10),
		"amount", v.p.Amount.String()+" UAH",
		"status", string(v.p.Status),
		"created", v.p.CreatedAt.Local().Format(timeLayout),
		"closed", closed,
	)
}
