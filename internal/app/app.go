// Package app wires configuration into a directory client, mapper, provider and sink.
package app

import (
	"fmt"

	"keepersecurity.com/ksm-catalog-sync/authentik"
	"keepersecurity.com/ksm-catalog-sync/catalog"
	"keepersecurity.com/ksm-catalog-sync/internal/config"
	"keepersecurity.com/ksm-catalog-sync/provider"
)

func NewProvider(cfg *config.Config, opts ...authentik.ClientOption) *provider.EntityProvider {
	opts = append([]authentik.ClientOption{authentik.WithMaxPages(cfg.Sync.MaxPages)}, opts...)
	var client = authentik.NewClient(&cfg.Authentik, opts...)
	var mapper = catalog.NewMapper(client.BaseUrl())
	return provider.NewEntityProvider(client, mapper)
}

func NewSink(cfg *config.Config) (sink catalog.Sink, err error) {
	switch cfg.Catalog.Sink {
	case config.SinkHttp:
		sink = catalog.NewHttpSink(cfg.Catalog.Url, cfg.Catalog.Token, nil)
	case config.SinkYaml:
		sink = catalog.NewYamlSink(cfg.Catalog.Path)
	case config.SinkMemory:
		sink = catalog.NewMemorySink()
	default:
		err = fmt.Errorf("unknown catalog sink \"%s\"", cfg.Catalog.Sink)
	}
	return
}
