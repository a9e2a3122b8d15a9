package artifact

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"github.com/supabase-community/supabase-go"
)

// SupabaseConfig holds the storage bucket credentials.
type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
	Bucket         string
}

// SupabaseMirror wraps a local Store and additionally uploads each published
// artifact to a Supabase storage bucket, best effort. Reads are always served
// from the local store; a failed upload is logged and does not fail the turn.
type SupabaseMirror struct {
	local  Store
	client *supabase.Client
	bucket string
}

// NewSupabaseMirror constructs the mirror around local.
func NewSupabaseMirror(local Store, cfg SupabaseConfig) (*SupabaseMirror, error) {
	client, err := supabase.NewClient(cfg.URL, cfg.ServiceRoleKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return &SupabaseMirror{local: local, client: client, bucket: cfg.Bucket}, nil
}

func (m *SupabaseMirror) Put(id string, r io.Reader) (int64, error) {
	var buf bytes.Buffer
	n, err := m.local.Put(id, io.TeeReader(r, &buf))
	if err != nil {
		return n, err
	}
	data := buf.Bytes()
	go func() {
		if _, err := m.client.Storage.UploadFile(m.bucket, FileName(id), bytes.NewReader(data)); err != nil {
			log.Printf("supabase: mirror upload for %s failed: %v", id, err)
			return
		}
		log.Printf("supabase: mirrored %s (%d bytes)", FileName(id), len(data))
	}()
	return n, nil
}

func (m *SupabaseMirror) Open(id string) (io.ReadCloser, int64, error) {
	return m.local.Open(id)
}
