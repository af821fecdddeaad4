package flow

import (
	"context"
	"sync"

	"github.com/louisbranch/rawcn/internal/services/registration/form"
)

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeUploader struct {
	log    *callLog
	url    string
	err    error
	preset string
	image  form.LocalImage
}

func (f *fakeUploader) Upload(_ context.Context, preset string, image form.LocalImage) (string, error) {
	f.log.add("upload")
	f.preset = preset
	f.image = image
	return f.url, f.err
}

type fakeAccounts struct {
	log      *callLog
	err      error
	email    string
	password string
}

func (f *fakeAccounts) CreateAccount(_ context.Context, email, password string) (form.Identity, error) {
	f.log.add("create_account")
	f.email = email
	f.password = password
	if f.err != nil {
		return form.Identity{}, f.err
	}
	return form.Identity{UID: "uid-1", Email: email, IDToken: "token"}, nil
}

type writtenRecord struct {
	Collection string
	Key        string
	Fields     map[string]any
}

type fakeRecords struct {
	log     *callLog
	failOn  string
	err     error
	written []writtenRecord
}

func (f *fakeRecords) WriteRecord(_ context.Context, collection, key string, fields map[string]any) error {
	f.log.add("write:" + collection)
	if f.failOn == collection {
		return f.err
	}
	f.written = append(f.written, writtenRecord{Collection: collection, Key: key, Fields: fields})
	return nil
}

type fakeNavigator struct {
	mu      sync.Mutex
	screens []string
}

func (f *fakeNavigator) NavigateTo(screen string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screens = append(f.screens, screen)
}

func (f *fakeNavigator) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.screens...)
}

type collaborators struct {
	log      *callLog
	uploader *fakeUploader
	accounts *fakeAccounts
	records  *fakeRecords
}

func newCollaborators() collaborators {
	log := &callLog{}
	return collaborators{
		log:      log,
		uploader: &fakeUploader{log: log, url: "https://x/img.png"},
		accounts: &fakeAccounts{log: log},
		records:  &fakeRecords{log: log},
	}
}

func validInput() form.Input {
	in := form.NewInput()
	in.FullName = "Ada Lovelace"
	in.Email = "ada@example.com"
	in.Password = "secret1"
	in.ConfirmPassword = "secret1"
	return in
}
