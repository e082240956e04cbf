package connectors

import "github.com/TableAdmin-lab/productloaderV2/internal"

// MailConnector fetches raw messages from a mailbox. Implementations exist
// for IMAP and the Gmail API.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMailMessage, error)
}
