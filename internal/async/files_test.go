package async_test

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"backoffice/internal/testsupport"
)

func expectBool(t *testing.T, f *fixture, target string, form url.Values, want bool) {
	t.Helper()
	rec := f.post(t, target, form)
	if rec.Code != http.StatusOK {
		t.Fatalf("%s: unexpected status %d", target, rec.Code)
	}
	var got bool
	decodeJSON(t, rec, &got)
	if got != want {
		t.Fatalf("%s %v: got %v want %v", target, form, got, want)
	}
}

func TestRenameDeleteAndDuplicateFile(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteText(t, filepath.Join(f.files, "2024", "cat.jpg"), "meow")

	expectBool(t, f, "/async/renamefile", url.Values{
		"namespace": {"files"}, "parent": {"2024"}, "oldname": {"cat.jpg"}, "newname": {"kitten.jpg"},
	}, true)
	if _, err := os.Stat(filepath.Join(f.files, "2024", "kitten.jpg")); err != nil {
		t.Fatalf("expected renamed file: %v", err)
	}
	expectBool(t, f, "/async/renamefile", url.Values{
		"namespace": {"files"}, "parent": {"2024"}, "oldname": {"cat.jpg"}, "newname": {"dog.jpg"},
	}, false)

	expectBool(t, f, "/async/duplicatefile", url.Values{"namespace": {"files"}, "filename": {"2024/kitten.jpg"}}, true)
	if _, err := os.Stat(filepath.Join(f.files, "2024", "kitten_copy.jpg")); err != nil {
		t.Fatalf("expected copy: %v", err)
	}

	expectBool(t, f, "/async/deletefile", url.Values{"namespace": {"files"}, "filename": {"2024/kitten.jpg"}}, true)
	expectBool(t, f, "/async/deletefile", url.Values{"namespace": {"files"}, "filename": {"2024/kitten.jpg"}}, false)
	expectBool(t, f, "/async/deletefile", url.Values{"namespace": {"nope"}, "filename": {"a.txt"}}, false)
}

func TestFolderOperations(t *testing.T) {
	f := newFixture(t)

	expectBool(t, f, "/async/folder/create", url.Values{"namespace": {"files"}, "parent": {""}, "foldername": {"albums"}}, true)
	expectBool(t, f, "/async/folder/create", url.Values{"namespace": {"files"}, "parent": {""}, "foldername": {"albums"}}, false)
	expectBool(t, f, "/async/folder/create", url.Values{"namespace": {"files"}, "parent": {"albums/"}, "foldername": {"2024"}}, true)

	expectBool(t, f, "/async/folder/rename", url.Values{
		"namespace": {"files"}, "parent": {"albums/"}, "oldname": {"2024"}, "newname": {"archive"},
	}, true)
	if info, err := os.Stat(filepath.Join(f.files, "albums", "archive")); err != nil || !info.IsDir() {
		t.Fatalf("expected renamed folder: %v", err)
	}

	expectBool(t, f, "/async/folder/remove", url.Values{"namespace": {"files"}, "parent": {""}, "foldername": {"albums"}}, true)
	if _, err := os.Stat(filepath.Join(f.files, "albums")); !os.IsNotExist(err) {
		t.Fatalf("expected folder removed, got %v", err)
	}
	expectBool(t, f, "/async/folder/remove", url.Values{"namespace": {"files"}, "parent": {""}, "foldername": {""}}, false)
}

func TestBrowse(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteFile(t, filepath.Join(f.files, "2024", "05", "cat.jpg"), 2048)
	testsupport.WriteText(t, filepath.Join(f.files, "2024", "05", "thumbs", "t.jpg"), "x")

	rec := f.get(t, "/async/browse/files/2024/05/?key=image")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`data-path="2024/05"`, "cat.jpg", "2.0 kB", "thumbs/", `class="file image"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in %s", want, body)
		}
	}

	root := f.get(t, "/async/browse").Body.String()
	if !strings.Contains(root, `data-namespace="files"`) || !strings.Contains(root, "2024/") {
		t.Fatalf("expected upload namespace root listing, got %s", root)
	}

	missing := f.get(t, "/async/browse/files/nowhere").Body.String()
	if !strings.Contains(missing, "alert-danger") || !strings.Contains(missing, "nowhere&#39; could not be found") {
		t.Fatalf("expected folder error, got %s", missing)
	}
}

func TestFilesAutocomplete(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteText(t, filepath.Join(f.files, "img", "sunset.jpg"), "x")
	testsupport.WriteText(t, filepath.Join(f.files, "docs", "sunset.pdf"), "x")

	var got []string
	decodeJSON(t, f.get(t, "/async/filesautocomplete?term=sun&ext=jpg,png"), &got)
	if len(got) != 1 || got[0] != "img/sunset.jpg" {
		t.Fatalf("unexpected matches %v", got)
	}
	decodeJSON(t, f.get(t, "/async/filesautocomplete?term=sun"), &got)
	if len(got) != 2 {
		t.Fatalf("expected both files without a filter, got %v", got)
	}
	if body := strings.TrimSpace(f.get(t, "/async/filesautocomplete?term=moon").Body.String()); body != "[]" {
		t.Fatalf("expected empty list, got %s", body)
	}
}

func TestAddStackAndShowStack(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteText(t, filepath.Join(f.files, "img", "cat.jpg"), "x")

	rec := f.get(t, "/async/addstack/img/cat.jpg")
	if strings.TrimSpace(rec.Body.String()) != "true" {
		t.Fatalf("expected true, got %s", rec.Body.String())
	}
	rec = f.get(t, "/async/addstack/missing.jpg")
	if strings.TrimSpace(rec.Body.String()) != "false" {
		t.Fatalf("expected false for a missing file, got %s", rec.Body.String())
	}

	full := f.get(t, "/async/showstack").Body.String()
	if !strings.Contains(full, "stack-full") || !strings.Contains(full, "cat.jpg") || !strings.Contains(full, "accept=") {
		t.Fatalf("expected full stack with upload control, got %s", full)
	}
	minimal := f.get(t, "/async/showstack?options=minimal&items=1").Body.String()
	if strings.Contains(minimal, `class="stack `) || !strings.Contains(minimal, "stack-item-image") {
		t.Fatalf("unexpected minimal stack %s", minimal)
	}
	odd := f.get(t, "/async/showstack?options=bogus").Body.String()
	if !strings.Contains(odd, "stack-full") {
		t.Fatalf("unknown options should fall back to full, got %s", odd)
	}
}
