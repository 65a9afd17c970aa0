package async

import (
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"backoffice/internal/i18n"
	"backoffice/internal/logging"
	"backoffice/internal/mailer"
	"backoffice/internal/services"
	"backoffice/internal/session"
	"backoffice/internal/templates"
)

// Test mail outcomes reported to the Recorder.
const (
	mailSent      = "sent"
	mailFailed    = "failed"
	mailThrottled = "throttled"
)

// email sends a ping test to the current user. The recipient segment of the
// path is not trusted; mail only ever goes to the account's own address.
func (h *Handler) email(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	loc := h.printer(r)
	user := session.UserFromContext(ctx)
	if user == nil {
		http.Error(w, loc.Sprintf(i18n.KeyLoginRequired), http.StatusUnauthorized)
		return
	}
	if !h.allowMail(user.ID) {
		h.observeMail(mailThrottled)
		h.writeText(w, http.StatusTooManyRequests, loc.Sprintf(i18n.KeyTooManyEmails))
		return
	}

	name := displayName(user.DisplayName, user.Username)
	body, err := templates.RenderString(ctx, templates.PingTest(loc, h.Config.Site.Name, name, clientIP(r)))
	if err != nil {
		h.logger.ErrorContext(ctx, "render ping test failed", logging.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	msg := mailer.Message{
		From:     h.Config.Mail.SenderMail,
		FromName: h.Config.Mail.SenderName,
		To:       user.Email,
		ToName:   name,
		Subject:  loc.Sprintf(i18n.KeyTestEmailSubject, h.Config.Site.Name),
		HTML:     body,
	}
	if strings.TrimSpace(msg.From) == "" {
		msg.From = "backoffice@" + requestHost(r)
	}
	if strings.TrimSpace(msg.FromName) == "" {
		msg.FromName = h.Config.Site.Name
	}

	if err := h.Mail.Send(ctx, msg); err != nil {
		h.observeMail(mailFailed)
		logging.ErrorWithContext(ctx, h.logger, "test email failed", "mail_send",
			logging.Error(err),
			logging.String("recipient", user.Email),
			logging.String(logging.FieldErrorHint, "check the [mail] section of the config"),
		)
		status := services.HTTPStatus(err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	h.observeMail(mailSent)
	h.logger.InfoContext(ctx, "Sent test email to "+user.Email,
		logging.Event("email"),
		logging.String("type", r.PathValue("type")),
	)
	h.writeText(w, http.StatusOK, loc.Sprintf(i18n.KeyDone))
}

// allowMail applies the per-user test mail interval. A non-positive
// interval disables throttling.
func (h *Handler) allowMail(userID int64) bool {
	if h.mailInterval <= 0 {
		return true
	}
	h.limitersMu.Lock()
	defer h.limitersMu.Unlock()
	limiter, ok := h.limiters[userID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(h.mailInterval), 1)
		h.limiters[userID] = limiter
	}
	return limiter.Allow()
}

func (h *Handler) observeMail(result string) {
	if h.Recorder != nil {
		h.Recorder.ObserveTestMail(result)
	}
}

func displayName(display, username string) string {
	if strings.TrimSpace(display) != "" {
		return display
	}
	return username
}
