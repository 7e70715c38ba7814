package server

import (
	"context"
	"fmt"
	"time"

	"github.com/mehanizm/airtable"
	"go.uber.org/zap"

	"liftoff/pkg"
)

const (
	LedgerStatusInProgress = "In Progress"
	LedgerStatusDone       = "Done"
)

// DeploymentRecord is the single row the ledger keeps per deployment
// attempt, keyed by the minted unique id.
type DeploymentRecord struct {
	UniqueID  string
	Prompt    string
	RepoName  string
	PitchDeck bool
	Document  bool
}

// Ledger is the external tabular store tracking deployment attempts. Status
// only ever moves forward, from in progress to done.
//
// ctx is part of the contract, but the airtable client exposes no
// context-aware call path, so that implementation cannot honor cancellation
// mid-request.
type Ledger interface {
	Insert(ctx context.Context, record *DeploymentRecord) error
	MarkDone(ctx context.Context, uniqueID, repoURL, appURL string) error
	ArtifactLinks(ctx context.Context, uniqueID string) (*pkg.ArtifactLinks, error)
}

type AirtableLedger struct {
	table  *airtable.Table
	logger *zap.SugaredLogger
}

func NewAirtableLedger(config Config, logger *zap.SugaredLogger) *AirtableLedger {
	client := airtable.NewClient(config.AirtableAPIKey)

	return &AirtableLedger{
		table:  client.GetTable(config.AirtableBaseID, config.AirtableTableName),
		logger: logger,
	}
}

func (l *AirtableLedger) Insert(ctx context.Context, record *DeploymentRecord) error {
	rows := &airtable.Records{
		Records: []*airtable.Record{
			{
				Fields: map[string]any{
					"unique_id":    record.UniqueID,
					"app_prompt":   record.Prompt,
					"repo_name":    record.RepoName,
					"Status":       LedgerStatusInProgress,
					"pitch_deck":   record.PitchDeck,
					"document":     record.Document,
					"created_time": time.Now().Format("2006-01-02T15:04:05"),
				},
			},
		},
	}

	if _, err := l.table.AddRecords(rows); err != nil {
		return wrapErr(ErrKindLedger, "insert row", err)
	}

	l.logger.Infow("ledger row inserted", "unique_id", record.UniqueID)

	return nil
}

// MarkDone looks the row up by exact match on unique_id and moves it to the
// terminal status. A row that is already done stays done.
func (l *AirtableLedger) MarkDone(ctx context.Context, uniqueID, repoURL, appURL string) error {
	row, err := l.findRow(uniqueID)
	if err != nil {
		return err
	}

	if fieldString(row, "Status") == LedgerStatusDone {
		return nil
	}

	_, err = row.UpdateRecordPartial(map[string]any{
		"Status":   LedgerStatusDone,
		"repo_url": repoURL,
		"app_url":  appURL,
	})
	if err != nil {
		return wrapErr(ErrKindLedger, "update row", err)
	}

	l.logger.Infow("ledger row marked done", "unique_id", uniqueID)

	return nil
}

// ArtifactLinks reads back the auxiliary document URLs the external
// automation writes out-of-band: a full table scan filtered client side by
// unique id.
func (l *AirtableLedger) ArtifactLinks(ctx context.Context, uniqueID string) (*pkg.ArtifactLinks, error) {
	rows, err := l.table.GetRecords().Do()
	if err != nil {
		return nil, wrapErr(ErrKindLedger, "scan rows", err)
	}

	for _, row := range rows.Records {
		if fieldString(row, "unique_id") != uniqueID {
			continue
		}

		return &pkg.ArtifactLinks{
			PitchDeckURL: fieldString(row, "pitch_deck_url"),
			DocumentURL:  fieldString(row, "document_url"),
		}, nil
	}

	return nil, wrapErr(ErrKindLedger, "scan rows", fmt.Errorf("no row with unique_id %s", uniqueID))
}

func (l *AirtableLedger) findRow(uniqueID string) (*airtable.Record, error) {
	rows, err := l.table.GetRecords().
		WithFilterFormula(fmt.Sprintf("{unique_id}='%s'", uniqueID)).
		Do()
	if err != nil {
		return nil, wrapErr(ErrKindLedger, "query row", err)
	}

	if len(rows.Records) == 0 {
		return nil, wrapErr(ErrKindLedger, "query row", fmt.Errorf("no row with unique_id %s", uniqueID))
	}

	return rows.Records[0], nil
}

func fieldString(row *airtable.Record, name string) string {
	value, ok := row.Fields[name].(string)
	if !ok {
		return ""
	}
	return value
}
