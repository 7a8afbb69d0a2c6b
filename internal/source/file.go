package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"enterprise-readiness/internal/usage"
)

// quantity decodes YAML (and JSON) numbers or numeric strings into an exact decimal.
type quantity struct {
	decimal.Decimal
}

func (q *quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid number %q: %w", node.Line, node.Value, err)
	}
	q.Decimal = d
	return nil
}

func (q quantity) MarshalYAML() (interface{}, error) {
	return q.InexactFloat64(), nil
}

type fileDocument struct {
	Accounts []fileAccount `yaml:"accounts"`
}

type fileAccount struct {
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Segment   string         `yaml:"segment,omitempty"`
	Snapshots []fileSnapshot `yaml:"snapshots"`
}

type fileSnapshot struct {
	Channel       string   `yaml:"channel"`
	Period        int      `yaml:"period"`
	Volume        quantity `yaml:"volume"`
	Production    quantity `yaml:"production"`
	NonProduction quantity `yaml:"non_production"`
	ActiveSeats   int      `yaml:"active_seats,omitempty"`
}

// File reads accounts from a YAML or JSON document.
type File struct {
	path   string
	logger zerolog.Logger
}

// NewFile constructs a file-backed source.
func NewFile(path string, logger zerolog.Logger) *File {
	return &File{path: path, logger: logger.With().Str("component", "source_file").Logger()}
}

// LoadAccounts parses the whole file. Field values are passed through
// untouched; contract checks happen in the pipeline per account.
func (f *File) LoadAccounts(ctx context.Context) ([]usage.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open accounts file: %w", err)
	}
	defer file.Close()

	accounts, err := DecodeAccounts(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}

	f.logger.Debug().Str("path", f.path).Int("accounts", len(accounts)).Msg("accounts loaded")
	return accounts, nil
}

// DecodeAccounts parses a YAML or JSON accounts document.
func DecodeAccounts(r io.Reader) ([]usage.Account, error) {
	var doc fileDocument
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	accounts := make([]usage.Account, 0, len(doc.Accounts))
	for _, fa := range doc.Accounts {
		acct := usage.Account{
			ID:        fa.ID,
			Name:      fa.Name,
			Segment:   fa.Segment,
			Snapshots: make([]usage.Snapshot, 0, len(fa.Snapshots)),
		}
		for _, fs := range fa.Snapshots {
			acct.Snapshots = append(acct.Snapshots, usage.Snapshot{
				Channel:       usage.Channel(fs.Channel),
				Period:        fs.Period,
				Volume:        fs.Volume.Decimal,
				Production:    fs.Production.Decimal,
				NonProduction: fs.NonProduction.Decimal,
				ActiveSeats:   fs.ActiveSeats,
			})
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// EncodeAccounts writes accounts in the document format DecodeAccounts reads.
func EncodeAccounts(w io.Writer, accounts []usage.Account) error {
	doc := fileDocument{Accounts: make([]fileAccount, 0, len(accounts))}
	for _, acct := range accounts {
		fa := fileAccount{
			ID:        acct.ID,
			Name:      acct.Name,
			Segment:   acct.Segment,
			Snapshots: make([]fileSnapshot, 0, len(acct.Snapshots)),
		}
		for _, snap := range acct.Snapshots {
			fa.Snapshots = append(fa.Snapshots, fileSnapshot{
				Channel:       string(snap.Channel),
				Period:        snap.Period,
				Volume:        quantity{snap.Volume},
				Production:    quantity{snap.Production},
				NonProduction: quantity{snap.NonProduction},
				ActiveSeats:   snap.ActiveSeats,
			})
		}
		doc.Accounts = append(doc.Accounts, fa)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	return enc.Close()
}

// WriteFile stores accounts at path, creating parent directories.
func WriteFile(path string, accounts []usage.Account) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EncodeAccounts(file, accounts); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

var _ AccountSource = (*File)(nil)
