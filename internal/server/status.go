package server

import (
	"net/http"

	"github.com/vyrodovalexey/baocreds/internal/vault"
)

// kindInternal labels failures that carry no fetch error kind.
const kindInternal = "InternalError"

// errorStatus maps a fetch error kind to an HTTP status. Without strict
// mapping every failure is reported with 200 and only the body tells.
func errorStatus(kind vault.Kind, strict bool) int {
	if !strict {
		return http.StatusOK
	}

	switch kind {
	case vault.KindConfiguration:
		return http.StatusInternalServerError
	case vault.KindTransport, vault.KindAuthentication:
		return http.StatusBadGateway
	case vault.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
