package emailsvc

import (
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"

	"github.com/upskillway/crm/core"
)

var (
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

type consoleService struct {
	defaultFromEmail mail.Address
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmailAddr(),
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

// NewConsoleServiceMock records messages without printing; runs synchronously.
func NewConsoleServiceMock(conf *core.Config) core.EmailService {
	return &consoleService{
		defaultFromEmail: conf.DefaultFromEmailAddr(),
		subjPrefix:       "[" + conf.AppName + "] ",
		disableOutput:    true,
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments()) {
		svc.send(*msg)
		mu.Lock()
		SentMessages = append(SentMessages, *msg)
		mu.Unlock()
	}
}

func (svc consoleService) send(msg core.EmailMessage) {
	if svc.disableOutput {
		return
	}

	body := new(strings.Builder)
	body.WriteString(fmt.Sprintf("From: %s\n", svc.defaultFromEmail.String()))
	body.WriteString(fmt.Sprintf("To: %s\n", joinAddresses(msg.To)))
	if len(msg.Cc) > 0 {
		body.WriteString(fmt.Sprintf("Cc: %s\n", joinAddresses(msg.Cc)))
	}
	body.WriteString(fmt.Sprintf("Subject: %s\n\n", svc.subjPrefix+msg.Subject))
	body.WriteString(msg.BodyStr)
	body.WriteString("\n" + strings.Repeat("-", 79) + "\n")
	log.Print(body.String())
}

func joinAddresses(addrs []mail.Address) string {
	strs := make([]string, 0, len(addrs))
	for _, a := range addrs {
		strs = append(strs, a.String())
	}
	return strings.Join(strs, ", ")
}

// ClearSentMessages resets the in-memory outbox; test helper.
func ClearSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}
