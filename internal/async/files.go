package async

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"backoffice/internal/filestore"
	"backoffice/internal/i18n"
	"backoffice/internal/logging"
	"backoffice/internal/session"
	"backoffice/internal/stack"
	"backoffice/internal/templates"
)

const (
	uploadsPermission = "files:uploads"
	stackOptionFull   = "full"
)

// filesAutocomplete returns upload paths containing term. ext is an optional
// comma separated extension filter.
func (h *Handler) filesAutocomplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	paths, err := h.Files.Search(q.Get("term"), splitList(q.Get("ext")))
	if err != nil {
		h.logger.WarnContext(r.Context(), "file search failed", logging.Error(err))
	}
	if paths == nil {
		paths = []string{}
	}
	h.writeJSON(w, r, http.StatusOK, paths)
}

// browse renders a folder of a namespace for the file picker. A folder that
// cannot be listed renders empty with an error notice.
func (h *Handler) browse(w http.ResponseWriter, r *http.Request) {
	namespace := r.PathValue("namespace")
	if namespace == "" {
		namespace = h.Files.UploadNamespace()
	}
	rel := strings.TrimRight(r.PathValue("path"), "/")
	loc := h.printer(r)

	view := templates.BrowseView{
		Namespace: namespace,
		Path:      rel,
		Key:       r.URL.Query().Get("key"),
		Title:     loc.Sprintf(i18n.KeyFilesIn, rel),
		Segments:  pathSegments(rel),
	}

	folders, files, err := h.browseFolder(namespace, rel)
	if err != nil {
		h.logger.InfoContext(r.Context(), "browse failed",
			logging.String("namespace", namespace),
			logging.String("path", rel),
			logging.Error(err),
		)
		view.Error = loc.Sprintf(i18n.KeyFolderNotFound, rel)
	}
	for _, e := range folders {
		view.Folders = append(view.Folders, templates.EntryView{Name: e.Name, Path: e.Path})
	}
	for _, e := range files {
		view.Files = append(view.Files, templates.EntryView{
			Name:  e.Name,
			Path:  e.Path,
			Size:  humanize.Bytes(uint64(max(e.Size, 0))),
			Image: e.Kind() == filestore.KindImage,
		})
	}
	h.writeHTML(w, r, "", templates.Browse(view))
}

func (h *Handler) browseFolder(namespace, rel string) (folders, files []filestore.Entry, err error) {
	fs, err := h.Files.Filesystem(namespace)
	if err != nil {
		return nil, nil, err
	}
	return fs.Browse(rel)
}

func (h *Handler) renameFile(w http.ResponseWriter, r *http.Request) {
	h.rename(w, r, "rename file")
}

func (h *Handler) deleteFile(w http.ResponseWriter, r *http.Request) {
	err := h.Files.Delete(formURI(r, "filename"))
	h.writeResult(w, r, "delete file", err)
}

func (h *Handler) duplicateFile(w http.ResponseWriter, r *http.Request) {
	copied, err := h.Files.Duplicate(formURI(r, "filename"))
	if err == nil {
		h.logger.DebugContext(r.Context(), "file duplicated", logging.String("copy", copied.String()))
	}
	h.writeResult(w, r, "duplicate file", err)
}

func (h *Handler) renameFolder(w http.ResponseWriter, r *http.Request) {
	h.rename(w, r, "rename folder")
}

// rename moves parent/oldname to parent/newname within one namespace.
func (h *Handler) rename(w http.ResponseWriter, r *http.Request, op string) {
	parent := r.PostFormValue("parent")
	from := filestore.URI{
		Namespace: r.PostFormValue("namespace"),
		Path:      filestore.JoinPath(parent, r.PostFormValue("oldname")),
	}
	err := h.Files.Rename(from, filestore.JoinPath(parent, r.PostFormValue("newname")))
	h.writeResult(w, r, op, err)
}

func (h *Handler) removeFolder(w http.ResponseWriter, r *http.Request) {
	err := h.Files.DeleteDir(folderURI(r))
	h.writeResult(w, r, "remove folder", err)
}

func (h *Handler) createFolder(w http.ResponseWriter, r *http.Request) {
	err := h.Files.CreateDir(folderURI(r))
	h.writeResult(w, r, "create folder", err)
}

// addStack puts a file of the upload namespace on the current user's stack.
// Files that cannot be stacked answer false.
func (h *Handler) addStack(w http.ResponseWriter, r *http.Request) {
	user := session.UserFromContext(r.Context())
	if user == nil {
		h.writeJSON(w, r, http.StatusOK, false)
		return
	}
	ok, err := h.Stack.Add(r.Context(), user.ID, r.PathValue("filename"))
	if err != nil {
		h.writeResult(w, r, "add to stack", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ok)
}

func (h *Handler) showStack(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	count := stack.MaxItems
	if n, err := strconv.Atoi(q.Get("items")); err == nil && n > 0 {
		count = n
	}
	option := q.Get("options")
	switch option {
	case "minimal", "list", stackOptionFull:
	default:
		option = stackOptionFull
	}

	user := session.UserFromContext(r.Context())
	var items []stack.Item
	if user != nil {
		var err error
		items, err = h.Stack.List(r.Context(), user.ID, count)
		if err != nil {
			h.logger.WarnContext(r.Context(), "stack unavailable", logging.Error(err))
		}
	}

	view := templates.StackView{
		Option:    option,
		CanUpload: h.Sessions.Allowed(user, uploadsPermission),
		FileTypes: h.Stack.FileTypes(),
		Namespace: h.Files.UploadNamespace(),
	}
	for _, item := range items {
		view.Items = append(view.Items, templates.StackItemView{Type: item.Type, Basename: item.Basename, Path: item.Path})
	}
	h.writeHTML(w, r, "", templates.Stack(h.printer(r), view))
}

func formURI(r *http.Request, field string) filestore.URI {
	return filestore.URI{
		Namespace: r.PostFormValue("namespace"),
		Path:      filestore.CleanPath(r.PostFormValue(field)),
	}
}

func folderURI(r *http.Request) filestore.URI {
	return filestore.URI{
		Namespace: r.PostFormValue("namespace"),
		Path:      filestore.JoinPath(r.PostFormValue("parent"), r.PostFormValue("foldername")),
	}
}

// pathSegments returns one crumb per folder with its cumulative path.
func pathSegments(rel string) []templates.PathSegment {
	if rel == "" {
		return nil
	}
	parts := strings.Split(rel, "/")
	out := make([]templates.PathSegment, 0, len(parts))
	for i, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, templates.PathSegment{Name: part, Path: strings.Join(parts[:i+1], "/")})
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, strings.TrimPrefix(part, "."))
		}
	}
	return out
}
