package profile

import (
	"errors"
	"fmt"
	"strings"
)

type ClientType string

const (
	ClientTypeNew      ClientType = "new"
	ClientTypeExisting ClientType = "existing"
)

var ErrInvalidProfile = errors.New("invalid user profile")

// UserProfile is collected once at registration and never changed afterwards.
type UserProfile struct {
	Name       string
	Company    string
	Project    string
	ClientType ClientType

	// Only asked from new clients.
	ProjectType    string
	ProjectStage   string
	AdditionalInfo string
}

func (profile UserProfile) IsNew() bool {
	return profile.ClientType == ClientTypeNew
}

// Status is the label used for the client in prompts and reports.
func (profile UserProfile) Status() string {
	if profile.IsNew() {
		return "NEW CLIENT"
	}
	return "RETURNING CLIENT"
}

func (profile UserProfile) Validate() error {
	var missing []string
	if strings.TrimSpace(profile.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(profile.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(profile.Project) == "" {
		missing = append(missing, "project")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidProfile, strings.Join(missing, ", "))
	}

	switch profile.ClientType {
	case ClientTypeNew, ClientTypeExisting:
		return nil
	default:
		return fmt.Errorf("%w: unknown client type %q", ErrInvalidProfile, profile.ClientType)
	}
}

// ParseClientType maps form input to a ClientType. Anything but "new" is an
// existing client, matching the registration form's default selection.
func ParseClientType(value string) ClientType {
	if strings.EqualFold(strings.TrimSpace(value), string(ClientTypeNew)) {
		return ClientTypeNew
	}
	return ClientTypeExisting
}
