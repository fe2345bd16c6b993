package tlsutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ontocache/errors"
)

// generateTestCert creates a self-signed certificate for testing
func generateTestCert(t *testing.T) (certPEM, keyPEM []byte) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Org"},
			CommonName:   "localhost",
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	require.NoError(t, err)

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM = pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	return certPEM, keyPEM
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestClientConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ClientConfig
		wantErr bool
	}{
		{"zero", ClientConfig{}, false},
		{"tls 1.3", ClientConfig{MinVersion: "1.3"}, false},
		{"bad version", ClientConfig{MinVersion: "1.1"}, true},
		{"cert without key", ClientConfig{CertFile: "cert.pem"}, true},
		{"key without cert", ClientConfig{KeyFile: "key.pem"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err))
				return
			}
			assert.NoError(t, err)
		})
	}
	assert.True(t, ClientConfig{}.IsZero())
	assert.False(t, ClientConfig{MinVersion: "1.2"}.IsZero())
}

func TestLoadClientTLSConfig(t *testing.T) {
	certPEM, keyPEM := generateTestCert(t)
	certFile := writeTemp(t, "cert.pem", certPEM)
	keyFile := writeTemp(t, "key.pem", keyPEM)

	cfg, err := LoadClientTLSConfig(ClientConfig{
		CAFiles:    []string{certFile},
		MinVersion: "1.3",
		CertFile:   certFile,
		KeyFile:    keyFile,
	})
	require.NoError(t, err)
	assert.Equal(t, uint16(tls.VersionTLS13), cfg.MinVersion)
	assert.NotNil(t, cfg.RootCAs)
	assert.Len(t, cfg.Certificates, 1)
	assert.False(t, cfg.InsecureSkipVerify)

	cfg, err = LoadClientTLSConfig(ClientConfig{InsecureSkipVerify: true})
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.Empty(t, cfg.Certificates)
}

func TestLoadClientTLSConfig_Errors(t *testing.T) {
	_, err := LoadClientTLSConfig(ClientConfig{CAFiles: []string{filepath.Join(t.TempDir(), "missing.pem")}})
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))

	_, err = LoadClientTLSConfig(ClientConfig{CAFiles: []string{writeTemp(t, "ca.pem", []byte("not pem"))}})
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))

	certPEM, _ := generateTestCert(t)
	_, err = LoadClientTLSConfig(ClientConfig{
		CertFile: writeTemp(t, "cert.pem", certPEM),
		KeyFile:  filepath.Join(t.TempDir(), "missing.pem"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
}

func TestNewHTTPClient_TrustsConfiguredCA(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	caFile := writeTemp(t, "ca.pem", pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: srv.Certificate().Raw,
	}))

	client, err := NewHTTPClient(ClientConfig{CAFiles: []string{caFile}}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, client.Timeout)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	untrusting, err := NewHTTPClient(ClientConfig{}, 5*time.Second)
	require.NoError(t, err)
	_, err = untrusting.Get(srv.URL)
	assert.Error(t, err, "the test server certificate is not in the system pool")
}
