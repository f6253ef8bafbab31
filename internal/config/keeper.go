package config

import (
	"fmt"

	ksm "github.com/keeper-security/secrets-manager-go/core"

	"keepersecurity.com/ksm-catalog-sync/authentik"
	"keepersecurity.com/ksm-catalog-sync/internal/logging"
)

// fetchKeeperRecords is replaced in tests.
var fetchKeeperRecords = func(configBase64 string, recordUid string) (records []*ksm.Record, err error) {
	var storage = ksm.NewMemoryKeyValueStorage(configBase64)
	var sm = ksm.NewSecretsManager(&ksm.ClientOptions{
		Config: storage,
	})
	var filter []string
	if len(recordUid) > 0 {
		filter = append(filter, recordUid)
	}
	records, err = sm.GetSecrets(filter)
	return
}

// resolveKeeperSecrets fills missing Authentik credentials from Keeper.
// Values set in the file or environment win over the record.
func resolveKeeperSecrets(cfg *Config) (err error) {
	if len(cfg.Keeper.ConfigBase64) == 0 {
		return
	}
	if len(cfg.Authentik.Url) > 0 && len(cfg.Authentik.Token) > 0 {
		return
	}

	var records []*ksm.Record
	if records, err = fetchKeeperRecords(cfg.Keeper.ConfigBase64, cfg.Keeper.RecordUid); err != nil {
		err = fmt.Errorf("keeper secrets manager: %w", err)
		return
	}
	var record *ksm.Record
	if record, err = authentik.FindEndpointRecord(records); err != nil {
		return
	}
	var params *authentik.EndpointParameters
	if params, err = authentik.LoadEndpointParametersFromRecord(record); err != nil {
		return
	}
	if len(cfg.Authentik.Url) == 0 {
		cfg.Authentik.Url = params.Url
	}
	if len(cfg.Authentik.Token) == 0 {
		cfg.Authentik.Token = params.Token
	}
	logging.Info().Str("record_uid", record.Uid).Msg("Authentik credentials loaded from Keeper record")
	return
}
