package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys shared by handlers and templates.
const (
	KeyLoginRequired    = "auth.login_required"
	KeyNotAllowed       = "readme.not_allowed"
	KeyNotReadable      = "readme.not_readable"
	KeyUnableToConnect  = "news.unable_to_connect"
	KeyFolderNotFound   = "browse.folder_not_found"
	KeyFilesIn          = "browse.files_in"
	KeyTestEmailSubject = "email.test_subject"
	KeyDone             = "email.done"
	KeyTooManyEmails    = "email.throttled"
	KeyLatestChanges    = "activity.latest_changes"
	KeyLatestLogins     = "activity.latest_logins"
	KeyNoActivity       = "activity.none"
	KeyRecentlyEdited   = "lastmodified.title"
	KeyNoRecords        = "lastmodified.none"
	KeyChangelog        = "changelog.title"
	KeyNoChanges        = "changelog.none"
	KeyStackEmpty       = "stack.empty"
	KeyUpload           = "stack.upload"
	KeyPingTitle        = "email.ping_title"
	KeyPingBody         = "email.ping_body"
	KeyPingRequester    = "email.ping_requester"
	KeyViewContent      = "omnisearch.view"
	KeyNewContent       = "omnisearch.new"
	KeyEditContent      = "omnisearch.edit"
	KeyDashboard        = "omnisearch.dashboard"
	KeyFileManager      = "omnisearch.files"
)

func init() {
	en := language.English
	message.SetString(en, KeyLoginRequired, "You must be logged in to use this.")
	message.SetString(en, KeyNotAllowed, "Not allowed")
	message.SetString(en, KeyNotReadable, "Not readable")
	message.SetString(en, KeyUnableToConnect, "Unable to connect to %s")
	message.SetString(en, KeyFolderNotFound, "Folder '%s' could not be found, or is not readable.")
	message.SetString(en, KeyFilesIn, "Files in %s")
	message.SetString(en, KeyTestEmailSubject, "Test email from %s")
	message.SetString(en, KeyDone, "Done")
	message.SetString(en, KeyTooManyEmails, "Too many test emails, try again later.")
	message.SetString(en, KeyLatestChanges, "Latest changes")
	message.SetString(en, KeyLatestLogins, "Latest logins")
	message.SetString(en, KeyNoActivity, "No recent activity.")
	message.SetString(en, KeyRecentlyEdited, "Recently edited %s")
	message.SetString(en, KeyNoRecords, "No %s yet.")
	message.SetString(en, KeyChangelog, "Changelog")
	message.SetString(en, KeyNoChanges, "No changes recorded.")
	message.SetString(en, KeyStackEmpty, "The stack is empty.")
	message.SetString(en, KeyUpload, "Upload files")
	message.SetString(en, KeyPingTitle, "Test email")
	message.SetString(en, KeyPingBody, "This is a test email sent from %s to confirm that mail delivery works.")
	message.SetString(en, KeyPingRequester, "Requested by %s from %s.")
	message.SetString(en, KeyViewContent, "View %s")
	message.SetString(en, KeyNewContent, "New %s")
	message.SetString(en, KeyEditContent, "Edit %s")
	message.SetString(en, KeyDashboard, "Dashboard")
	message.SetString(en, KeyFileManager, "File management")

	nl := language.Dutch
	message.SetString(nl, KeyLoginRequired, "Je moet ingelogd zijn om dit te gebruiken.")
	message.SetString(nl, KeyNotAllowed, "Niet toegestaan")
	message.SetString(nl, KeyNotReadable, "Niet leesbaar")
	message.SetString(nl, KeyUnableToConnect, "Kan geen verbinding maken met %s")
	message.SetString(nl, KeyFolderNotFound, "Map '%s' kon niet worden gevonden, of is niet leesbaar.")
	message.SetString(nl, KeyFilesIn, "Bestanden in %s")
	message.SetString(nl, KeyTestEmailSubject, "Testmail van %s")
	message.SetString(nl, KeyDone, "Klaar")
	message.SetString(nl, KeyTooManyEmails, "Te veel testmails, probeer het later opnieuw.")
	message.SetString(nl, KeyLatestChanges, "Laatste wijzigingen")
	message.SetString(nl, KeyLatestLogins, "Laatste logins")
	message.SetString(nl, KeyNoActivity, "Geen recente activiteit.")
	message.SetString(nl, KeyRecentlyEdited, "Recent bewerkte %s")
	message.SetString(nl, KeyNoRecords, "Nog geen %s.")
	message.SetString(nl, KeyChangelog, "Wijzigingslog")
	message.SetString(nl, KeyNoChanges, "Geen wijzigingen vastgelegd.")
	message.SetString(nl, KeyStackEmpty, "De stapel is leeg.")
	message.SetString(nl, KeyUpload, "Bestanden uploaden")
	message.SetString(nl, KeyPingTitle, "Testmail")
	message.SetString(nl, KeyPingBody, "Dit is een testmail van %s om te bevestigen dat het versturen van mail werkt.")
	message.SetString(nl, KeyPingRequester, "Aangevraagd door %s vanaf %s.")
	message.SetString(nl, KeyViewContent, "Bekijk %s")
	message.SetString(nl, KeyNewContent, "Nieuwe %s")
	message.SetString(nl, KeyEditContent, "Bewerk %s")
	message.SetString(nl, KeyDashboard, "Dashboard")
	message.SetString(nl, KeyFileManager, "Bestandsbeheer")
}
