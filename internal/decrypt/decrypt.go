// Package decrypt derives the command-line tokens ffmpeg and ffprobe need to
// read an encrypted audiobook.
//
// AAX sources are unlocked with the account activation bytes. AAXC sources
// carry a per-title key and IV in a JSON voucher next to the file, under
// content_license.license_response.
package decrypt

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"aaxconv/internal/audiobook"
	"aaxconv/internal/services"
	"aaxconv/internal/toolexec"
)

const stageName = "derive_params"

// Params is the ordered list of tokens placed before -i. It is never empty
// once Derive succeeds.
type Params []string

// Args returns a copy safe for appending.
func (p Params) Args() []string {
	return append([]string(nil), p...)
}

// Redacted renders the params with secrets masked for logging.
func (p Params) Redacted() string {
	return toolexec.RedactArgs(p)
}

type voucher struct {
	ContentLicense struct {
		LicenseResponse struct {
			Key string `json:"key"`
			IV  string `json:"iv"`
		} `json:"license_response"`
	} `json:"content_license"`
}

// Derive builds the decrypt params for src. activationBytes is required for
// AAX sources and ignored for AAXC sources.
func Derive(src audiobook.SourceFile, activationBytes string) (Params, error) {
	switch src.Kind {
	case audiobook.KindAAXC:
		return fromVoucher(src.VoucherPath)
	default:
		code := strings.TrimSpace(activationBytes)
		if code == "" {
			return nil, services.Wrap(services.ErrConfiguration, stageName, "activation bytes",
				"no activation bytes configured for AAX source (use --authcode or AAXCONV_AUTHCODE)", nil)
		}
		return Params{"-activation_bytes", code}, nil
	}
}

func fromVoucher(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, stageName, "voucher",
				fmt.Sprintf("voucher %s not found", path), err)
		}
		return nil, services.Wrap(services.ErrConfiguration, stageName, "voucher", "read voucher", err)
	}
	var v voucher
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "voucher",
			fmt.Sprintf("voucher %s is not valid JSON", path), err)
	}
	key := strings.TrimSpace(v.ContentLicense.LicenseResponse.Key)
	iv := strings.TrimSpace(v.ContentLicense.LicenseResponse.IV)
	if key == "" || iv == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "voucher",
			fmt.Sprintf("voucher %s has no content_license.license_response key/iv", path), nil)
	}
	return Params{"-audible_key", key, "-audible_iv", iv}, nil
}
