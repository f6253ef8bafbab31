package authentik

import (
	"errors"
	"net/url"
	"strings"

	ksm "github.com/keeper-security/secrets-manager-go/core"
)

const apiPathMarker = "/api/v3"

// FindEndpointRecord picks the Keeper record that holds the Authentik API
// credentials: a login record whose URL points to the Authentik v3 API.
func FindEndpointRecord(records []*ksm.Record) (record *ksm.Record, err error) {
	for _, r := range records {
		if r.Type() != "login" {
			continue
		}
		var webUrl = r.GetFieldValueByType("url")
		if len(webUrl) == 0 {
			continue
		}
		var uri *url.URL
		var er1 error
		if uri, er1 = url.Parse(webUrl); er1 != nil {
			continue
		}
		if !strings.Contains(uri.Path, apiPathMarker) {
			continue
		}
		if len(r.Password()) == 0 {
			continue
		}
		record = r
		return
	}
	err = errors.New("Authentik record was not found. Make sure the record is valid and shared to KSM application")
	return
}

// LoadEndpointParametersFromRecord reads the API URL and token from a Keeper login record.
// The record password is the Authentik API token.
func LoadEndpointParametersFromRecord(record *ksm.Record) (params *EndpointParameters, err error) {
	params = &EndpointParameters{
		Url:   strings.TrimSpace(record.GetFieldValueByType("url")),
		Token: strings.TrimSpace(record.Password()),
	}
	if len(params.Url) == 0 {
		params = nil
		err = errors.New("Authentik record does not contain a URL")
		return
	}
	if len(params.Token) == 0 {
		params = nil
		err = errors.New("Authentik record does not contain an API token in the password field")
	}
	return
}
