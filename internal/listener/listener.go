package listener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"

	"github.com/TableAdmin-lab/productloaderV2/internal/config"
	"github.com/TableAdmin-lab/productloaderV2/internal/connectors"
	gmailconnector "github.com/TableAdmin-lab/productloaderV2/internal/connectors/gmail"
	imapconnector "github.com/TableAdmin-lab/productloaderV2/internal/connectors/imap"
	"github.com/TableAdmin-lab/productloaderV2/internal/ingest"
	"github.com/TableAdmin-lab/productloaderV2/internal/storage"
)

// Service watches a mailbox for menus. Every cycle it fetches new mail,
// decides which messages actually carry a menu, runs extraction on their
// attachments and stores the canonical items for the form to load.
type Service struct {
	db     *storage.DB
	cfg    config.Config
	ingest *ingest.Service
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg, ingest: ingest.NewService(cfg)}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.RunCycle(ctx); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	processed, menus, err := s.ProcessPending(ctx, s.cfg.MailListenerBatch)
	if err != nil {
		return err
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d processed=%d menus=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, processed, menus)
	return nil
}

// ProcessPending works through fetched emails: non-menu mail is skipped,
// menu attachments go through extraction and land in the menus table.
// A broken email is marked failed and does not stop the batch.
func (s *Service) ProcessPending(ctx context.Context, batch int) (processed, menus int, err error) {
	emails, err := s.db.ListEmailsByStatus("fetched", batch)
	if err != nil {
		return 0, 0, err
	}

	for _, email := range emails {
		stored, err := s.processEmail(ctx, email.ID, email.RawRef, email.Subject)
		if err != nil {
			fmt.Printf("listener process error email=%d: %v\n", email.ID, err)
			_ = s.db.UpdateEmailStatus(email.ID, "failed")
			continue
		}
		processed++
		menus += stored
	}
	return processed, menus, nil
}

func (s *Service) processEmail(ctx context.Context, emailID int, rawRef, subject string) (int, error) {
	raw, err := os.ReadFile(rawRef)
	if err != nil {
		return 0, err
	}
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}

	parts := append([]*enmime.Part{}, env.Attachments...)
	parts = append(parts, env.Inlines...)

	attachmentNames := make([]string, 0, len(parts))
	for _, part := range parts {
		attachmentNames = append(attachmentNames, part.FileName)
	}

	if !IsMenuEmail(subject, env.Text, attachmentNames) {
		return 0, s.db.UpdateEmailStatus(emailID, "skipped")
	}

	stored := 0
	for _, part := range parts {
		if !isMenuAttachment(part.FileName) {
			continue
		}

		result := s.ingest.Extract(ctx, part.FileName, part.ContentType, part.Content)
		for _, warning := range result.Warnings {
			fmt.Printf("listener extract warning email=%d file=%s: %s\n", emailID, part.FileName, warning)
		}
		if len(result.Items) == 0 {
			continue
		}

		id := emailID
		menuID, err := s.db.InsertMenu(&id, part.FileName, "email", result.Items)
		if err != nil {
			return stored, err
		}
		stored++

		if s.cfg.MailListenerSaveJSON {
			if err := s.saveMenuJSON(menuID, result.Items); err != nil {
				return stored, err
			}
		}
	}

	// An HTML-only menu email has no attachments worth extracting.
	if stored == 0 && env.HTML != "" {
		items, err := ingest.ParseHTMLMenu(env.HTML)
		if err == nil && len(items) > 0 {
			result := s.ingest.ExtractParsed(items)
			id := emailID
			menuID, err := s.db.InsertMenu(&id, "body.html", "email", result.Items)
			if err != nil {
				return stored, err
			}
			stored++
			if s.cfg.MailListenerSaveJSON {
				if err := s.saveMenuJSON(menuID, result.Items); err != nil {
					return stored, err
				}
			}
		}
	}

	return stored, s.db.UpdateEmailStatus(emailID, "processed")
}

func (s *Service) saveMenuJSON(menuID int64, items any) error {
	dir := filepath.Join(s.cfg.OutputDir, "menus")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, fmt.Sprintf("menu_%d.json", menuID)), encoded, 0o644)
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
