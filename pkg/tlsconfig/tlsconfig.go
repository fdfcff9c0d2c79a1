// Package tlsconfig builds the TLS settings of the HTTP listener.
package tlsconfig

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/ansel1/merry/v2"
)

type CertificatePair struct {
	CertFile       string `mapstructure:"certFile"`
	PrivateKeyFile string `mapstructure:"privateKeyFile"`
}

// Config enables HTTPS when at least one certificate pair is set.
type Config struct {
	CertificatePairs []CertificatePair `mapstructure:"certificatePairs"`
	ClientCAFiles    []string          `mapstructure:"clientCAFiles"`
	ClientAuth       string            `mapstructure:"clientAuth"`
	MinTLSVersion    string            `mapstructure:"minTLSVersion"`
	CipherSuites     []string          `mapstructure:"cipherSuites"`
}

func (c Config) Enabled() bool {
	return len(c.CertificatePairs) > 0
}

var clientAuthTypes = map[string]tls.ClientAuthType{
	"NoClientCert":               tls.NoClientCert,
	"RequestClientCert":          tls.RequestClientCert,
	"RequireAnyClientCert":       tls.RequireAnyClientCert,
	"VerifyClientCertIfGiven":    tls.VerifyClientCertIfGiven,
	"RequireAndVerifyClientCert": tls.RequireAndVerifyClientCert,
}

var tlsVersions = map[string]uint16{
	"TLS1.0": tls.VersionTLS10,
	"TLS1.1": tls.VersionTLS11,
	"TLS1.2": tls.VersionTLS12,
	"TLS1.3": tls.VersionTLS13,
}

// ParseTLSVersion defaults to TLS 1.2.
func ParseTLSVersion(v string) (uint16, error) {
	if v == "" {
		return tls.VersionTLS12, nil
	}
	if tv, ok := tlsVersions[v]; ok {
		return tv, nil
	}
	return 0, merry.Errorf("invalid TLS version: %q", v)
}

func ParseClientAuthType(s string) (tls.ClientAuthType, error) {
	if s == "" {
		return tls.NoClientCert, nil
	}
	if t, ok := clientAuthTypes[s]; ok {
		return t, nil
	}
	return tls.NoClientCert, merry.Errorf("invalid client auth type: %q", s)
}

// CipherSuites maps cipher names to ids. Insecure ones are accepted and
// returned as warnings.
func CipherSuites(names []string) ([]uint16, []string, error) {
	if len(names) == 0 {
		return nil, nil, nil
	}

	known := make(map[string]*tls.CipherSuite)
	for _, c := range tls.CipherSuites() {
		known[c.Name] = c
	}
	for _, c := range tls.InsecureCipherSuites() {
		known[c.Name] = c
	}

	ids := make([]uint16, 0, len(names))
	var warns []string
	for _, name := range names {
		c, ok := known[name]
		if !ok {
			return nil, nil, merry.Errorf("unknown cipher suite: %q", name)
		}
		if c.Insecure {
			warns = append(warns, "insecure cipher suite enabled: "+name)
		}
		ids = append(ids, c.ID)
	}
	return ids, warns, nil
}

// ServerConfig loads the certificates and returns the listener settings
// together with warnings worth logging.
func ServerConfig(cfg Config) (*tls.Config, []string, error) {
	if !cfg.Enabled() {
		return nil, nil, merry.New("no certificate pairs provided")
	}

	certificates := make([]tls.Certificate, 0, len(cfg.CertificatePairs))
	for _, pair := range cfg.CertificatePairs {
		cert, err := tls.LoadX509KeyPair(pair.CertFile, pair.PrivateKeyFile)
		if err != nil {
			return nil, nil, merry.Prepend(err, "loading "+pair.CertFile)
		}
		certificates = append(certificates, cert)
	}

	minVersion, err := ParseTLSVersion(cfg.MinTLSVersion)
	if err != nil {
		return nil, nil, err
	}
	clientAuth, err := ParseClientAuthType(cfg.ClientAuth)
	if err != nil {
		return nil, nil, err
	}
	ciphers, warns, err := CipherSuites(cfg.CipherSuites)
	if err != nil {
		return nil, nil, err
	}

	tlsConfig := &tls.Config{
		Certificates: certificates,
		MinVersion:   minVersion,
		CipherSuites: ciphers,
		ClientAuth:   clientAuth,
	}

	if clientAuth == tls.NoClientCert {
		if len(cfg.ClientCAFiles) > 0 {
			warns = append(warns, "client CAs provided but client certificates are not checked")
		}
		return tlsConfig, warns, nil
	}

	if len(cfg.ClientCAFiles) == 0 {
		return nil, nil, merry.Errorf("clientAuth set to %q, but no client CAs provided", cfg.ClientAuth)
	}
	pool := x509.NewCertPool()
	for _, f := range cfg.ClientCAFiles {
		pem, err := os.ReadFile(f)
		if err != nil {
			return nil, nil, merry.Wrap(err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, nil, merry.Errorf("no certificates found in %s", f)
		}
	}
	tlsConfig.ClientCAs = pool

	return tlsConfig, warns, nil
}
