// Package google loads the session catalog from a Google Sheet with the
// tabs Target, Products, Team and Objections.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"salespulse/internal/catalog"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Tab names.
const (
	TargetSheet     = "Target"
	ProductsSheet   = "Products"
	TeamSheet       = "Team"
	ObjectionsSheet = "Objections"
)

// Config selects the spreadsheet and the service account used to read it.
type Config struct {
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

type valuesGetter func(ctx context.Context, rng string) ([][]interface{}, error)

// Client is a read-only catalog source.
type Client struct {
	spreadsheetID string
	get           valuesGetter
}

var _ catalog.Source = (*Client)(nil)

// New creates a Sheets client with read-only service account credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	id := strings.TrimSpace(cfg.SpreadsheetID)
	if id == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		spreadsheetID: id,
		get: func(ctx context.Context, rng string) ([][]interface{}, error) {
			vr, err := svc.Spreadsheets.Values.Get(id, rng).Context(ctx).Do()
			if err != nil {
				return nil, err
			}
			return vr.Values, nil
		},
	}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Load reads the four tabs concurrently and assembles a seed.
func (c *Client) Load(ctx context.Context) (catalog.Seed, error) {
	var target, products, team, objections [][]interface{}

	g, gctx := errgroup.WithContext(ctx)
	fetch := func(sheet string, dst *[][]interface{}) {
		g.Go(func() error {
			v, err := c.get(gctx, fmt.Sprintf("%s!A:C", sheet))
			if err != nil {
				return fmt.Errorf("read %s sheet: %w", sheet, err)
			}
			*dst = v
			return nil
		})
	}
	fetch(TargetSheet, &target)
	fetch(ProductsSheet, &products)
	fetch(TeamSheet, &team)
	fetch(ObjectionsSheet, &objections)
	if err := g.Wait(); err != nil {
		return catalog.Seed{}, err
	}

	var seed catalog.Seed
	var err error
	if seed.Target, err = parseTarget(target); err != nil {
		return catalog.Seed{}, err
	}
	if seed.Products, err = parseProducts(products); err != nil {
		return catalog.Seed{}, err
	}
	seed.Representatives = parseColumn(team)
	seed.Objections = parseColumn(objections)

	if err := seed.Validate(); err != nil {
		return catalog.Seed{}, err
	}
	slog.InfoContext(ctx, "Loaded catalog from Google Sheets",
		"spreadsheet_id", c.spreadsheetID,
		"products", len(seed.Products),
		"team", len(seed.Representatives),
		"objections", len(seed.Objections))
	return seed, nil
}
