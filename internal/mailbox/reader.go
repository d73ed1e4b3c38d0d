package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
)

// AuthError indicates that the IMAP server rejected the configured
// credentials.
type AuthError struct {
	Username string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("mailbox auth error (%s): %s", e.Username, e.Message)
}

// IMAPReader implements Reader over go-imap v2. Each operation opens a
// fresh connection; the agent is single-threaded so there is never more
// than one connection at a time.
type IMAPReader struct {
	host     string
	port     string
	username string
	password string
	tls      bool
}

// NewIMAPReader creates a new IMAP reader configuration.
func NewIMAPReader(
	host, port, username, password string, tls bool,
) *IMAPReader {
	return &IMAPReader{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
	}
}

// connect establishes a connection to the IMAP server, authenticates,
// and selects INBOX. The caller is responsible for calling Logout on
// the returned client.
func (r *IMAPReader) connect(
	_ context.Context,
) (*imapclient.Client, error) {
	addr := r.host + ":" + r.port

	var client *imapclient.Client
	var err error

	if r.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(r.username, r.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &AuthError{
			Username: r.username,
			Message:  fmt.Sprintf("authentication failed: %v", err),
		}
	}

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	return client, nil
}

// FetchUnseen searches INBOX for messages without the \Seen flag and
// returns them with their plain-text bodies. Bodies are fetched with
// Peek so that fetching alone never flips the seen flag.
func (r *IMAPReader) FetchUnseen(ctx context.Context) ([]Message, error) {
	client, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	criteria := &imap.SearchCriteria{
		NotFlag: []imap.Flag{imap.FlagSeen},
	}

	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching unseen messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	uidSet := imap.UIDSetNum(uids...)

	bodySection := &imap.FetchItemBodySection{
		Peek: true,
	}

	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		Flags:       true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)
	defer fetchCmd.Close()

	var messages []Message
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		m := messageFromBuffer(buf)

		rawBody := buf.FindBodySection(bodySection)
		if rawBody != nil {
			m.Body = extractTextBody(rawBody)
		}

		messages = append(messages, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return messages, fmt.Errorf("fetching unseen messages: %w", err)
	}

	return messages, nil
}

// MarkSeen adds the \Seen flag to the message with the given UID. The
// store is silent and flag addition is idempotent: marking an already
// seen message is a no-op on the server.
func (r *IMAPReader) MarkSeen(ctx context.Context, uid uint32) error {
	client, err := r.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	uidSet := imap.UIDSetNum(imap.UID(uid))

	storeCmd := client.Store(uidSet, &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)

	if err := storeCmd.Close(); err != nil {
		return fmt.Errorf("marking UID %d seen: %w", uid, err)
	}
	return nil
}

// messageFromBuffer extracts a Message from a FetchMessageBuffer.
func messageFromBuffer(buf *imapclient.FetchMessageBuffer) Message {
	m := Message{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		m.MessageID = buf.Envelope.MessageID
		m.Subject = buf.Envelope.Subject
		m.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			m.From = from.Addr()
			if from.Name != "" {
				m.SenderName = from.Name
			} else if at := strings.Index(m.From, "@"); at > 0 {
				m.SenderName = m.From[:at]
			}
		}
	}

	return m
}

// extractTextBody parses a raw RFC 2822 message using go-message and
// returns the text/plain body, falling back to stripped HTML when no
// plain part exists.
func extractTextBody(raw []byte) string {
	reader := bytes.NewReader(raw)

	mr, err := mail.CreateReader(reader)
	if err != nil {
		// If parsing fails, treat the whole thing as plain text.
		return strings.TrimSpace(string(raw))
	}
	defer mr.Close()

	var textBody, htmlBody string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := h.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			textBody = string(body)
		case strings.HasPrefix(contentType, "text/html"):
			htmlBody = string(body)
		}
	}

	if textBody == "" && htmlBody != "" {
		return stripHTML(htmlBody)
	}
	return strings.TrimSpace(textBody)
}
