package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const (
	defaultPrefix = "Ledger"
	// Sheets rejects these characters in tab titles.
	invalidTitleChars = `[]*?:/\`
	maxTitleLength    = 100
)

type Config struct {
	SpreadsheetID string
	// SheetPrefix names each user's tab: "<prefix> <user>".
	SheetPrefix string
	// CredentialsJSON wins over CredentialsFile. With neither set the
	// GOOGLE_APPLICATION_CREDENTIALS file is used.
	CredentialsJSON string
	CredentialsFile string
}

// Client exports each user's ledger to its own tab of one spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	prefix        string
	logger        *log.Logger

	mu   sync.Mutex
	tabs map[string]bool // titles known to exist
}

var _ ports.LedgerExporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	creds, err := serviceAccountJSON(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewWithService(svc, cfg, logger), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test
// endpoint.
func NewWithService(svc *gsheet.Service, cfg Config, logger *log.Logger) *Client {
	prefix := strings.TrimSpace(cfg.SheetPrefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	if logger == nil {
		logger = log.Nop()
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		prefix:        prefix,
		logger:        logger.WithComponent(log.ComponentSheets),
		tabs:          make(map[string]bool),
	}
}

func serviceAccountJSON(cfg Config) ([]byte, error) {
	if js := strings.TrimSpace(cfg.CredentialsJSON); js != "" {
		return []byte(js), nil
	}
	path := strings.TrimSpace(cfg.CredentialsFile)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// SheetTitle is the tab holding owner's ledger.
func (c *Client) SheetTitle(owner core.UserID) string {
	title := c.prefix + " " + string(owner)
	title = strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidTitleChars, r) {
			return '_'
		}
		return r
	}, title)
	if r := []rune(title); len(r) > maxTitleLength {
		title = string(r[:maxTitleLength])
	}
	return title
}

// ExportLedger clears owner's tab and writes txs into it.
func (c *Client) ExportLedger(ctx context.Context, owner core.UserID, txs []core.Transaction) (int, error) {
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	title := c.SheetTitle(owner)
	if err := c.ensureTab(ctx, title); err != nil {
		return 0, err
	}

	rng := quoteTitle(title)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		c.forget(title)
		return 0, fmt.Errorf("clear %s: %w", title, err)
	}

	rows := ports.LedgerRows(txs)
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, cell := range row {
			values[i][j] = cell
		}
	}
	vr := &gsheet.ValueRange{Values: values}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("write %s: %w", title, err)
	}

	c.logger.DebugContext(ctx, "Ledger exported",
		log.FieldUserID, owner,
		log.FieldSheet, title,
		log.FieldRows, len(rows))
	return len(rows), nil
}

func (c *Client) ensureTab(ctx context.Context, title string) error {
	c.mu.Lock()
	known := c.tabs[title]
	c.mu.Unlock()
	if known {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	c.mu.Lock()
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.tabs[s.Properties.Title] = true
		}
	}
	known = c.tabs[title]
	c.mu.Unlock()
	if known {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	c.logger.InfoContext(ctx, "Sheet created", log.FieldSheet, title)

	c.mu.Lock()
	c.tabs[title] = true
	c.mu.Unlock()
	return nil
}

// forget drops a cached title, e.g. after the tab was removed by hand.
func (c *Client) forget(title string) {
	c.mu.Lock()
	delete(c.tabs, title)
	c.mu.Unlock()
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
