package webserver

import (
	"context"
	"crypto/tls"
	"log"
	"os"
	"sync"
	"time"
)

// CertReloader serves a certificate pair from disk and picks up renewed files.
type CertReloader struct {
	certFile string
	keyFile  string

	mu      sync.RWMutex
	cert    *tls.Certificate
	modCert time.Time
	modKey  time.Time
}

func NewCertReloader(certFile, keyFile string) (*CertReloader, error) {
	r := &CertReloader{certFile: certFile, keyFile: keyFile}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *CertReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return err
	}
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return err
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.cert = &cert
	r.modCert = certInfo.ModTime()
	r.modKey = keyInfo.ModTime()
	r.mu.Unlock()
	return nil
}

// reloadIfChanged reloads when either file is newer than the loaded pair.
func (r *CertReloader) reloadIfChanged() (bool, error) {
	certInfo, err := os.Stat(r.certFile)
	if err != nil {
		return false, err
	}
	keyInfo, err := os.Stat(r.keyFile)
	if err != nil {
		return false, err
	}

	r.mu.RLock()
	changed := certInfo.ModTime().After(r.modCert) || keyInfo.ModTime().After(r.modKey)
	r.mu.RUnlock()
	if !changed {
		return false, nil
	}
	return true, r.reload()
}

// Watch checks the files every interval until ctx is done.
func (r *CertReloader) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changed, err := r.reloadIfChanged()
			if err != nil {
				log.Printf("webserver: reload TLS certificates: %v", err)
				continue
			}
			if changed {
				log.Printf("webserver: TLS certificates reloaded")
			}
		}
	}
}

func (r *CertReloader) TLSConfig() *tls.Config {
	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			r.mu.RLock()
			defer r.mu.RUnlock()
			return r.cert, nil
		},
	}
}
