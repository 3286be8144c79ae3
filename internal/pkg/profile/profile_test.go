package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient() UserProfile {
	return UserProfile{
		Name:           "Ana Silva",
		Company:        "Horizon Inc.",
		Project:        "Future Tower",
		ClientType:     ClientTypeNew,
		ProjectType:    "Residential",
		ProjectStage:   "Launch",
		AdditionalInfo: "Interior renders and a virtual tour",
	}
}

func TestValidatePositive(t *testing.T) {
	assert.NoError(t, newClient().Validate())
}

func TestValidateNegativeMissingFields(t *testing.T) {
	user := UserProfile{Name: "Ana", ClientType: ClientTypeExisting}

	err := user.Validate()
	assert.ErrorIs(t, err, ErrInvalidProfile)
	assert.EqualError(t, err, "invalid user profile: missing company, project")
}

func TestValidateNegativeUnknownClientType(t *testing.T) {
	user := newClient()
	user.ClientType = "vip"

	assert.ErrorIs(t, user.Validate(), ErrInvalidProfile)
}

func TestParseClientType(t *testing.T) {
	assert.Equal(t, ClientTypeNew, ParseClientType("new"))
	assert.Equal(t, ClientTypeNew, ParseClientType(" NEW "))
	assert.Equal(t, ClientTypeExisting, ParseClientType("existing"))
	assert.Equal(t, ClientTypeExisting, ParseClientType(""))
}

func TestAppendDocumentKeepsPriorContent(t *testing.T) {
	config := CompanyConfig{Context: "existing knowledge"}

	config.AppendDocument("manual.txt", "Glass IOR is 1.52")

	assert.Equal(t, "existing knowledge\n\n--- IMPORTED DOCUMENT (manual.txt) ---\nGlass IOR is 1.52", config.Context)
}

func TestStoreAppendDocument(t *testing.T) {
	store := NewStore(CompanyConfig{CompanyName: "ArchTools", Context: "base"})

	store.AppendDocument("a.md", "first")
	updated := store.AppendDocument("b.md", "second")

	assert.True(t, strings.HasPrefix(updated.Context, "base"))
	assert.Contains(t, updated.Context, "--- IMPORTED DOCUMENT (a.md) ---\nfirst")
	assert.Contains(t, updated.Context, "--- IMPORTED DOCUMENT (b.md) ---\nsecond")
	assert.Equal(t, updated, store.Get())
}

func TestStoreUpdateNormalizesWebsite(t *testing.T) {
	store := NewStore(DefaultCompanyConfig())

	store.Update(CompanyConfig{CompanyName: "Acme", Tone: ToneFormal, WebsiteURL: "www.acme.com"})

	assert.Equal(t, "https://www.acme.com", store.Get().WebsiteURL)
	assert.Equal(t, "Acme", store.Get().CompanyName)
}

func TestNormalizeWebsiteURL(t *testing.T) {
	assert.Equal(t, "", NormalizeWebsiteURL("  "))
	assert.Equal(t, "https://acme.com", NormalizeWebsiteURL("http://acme.com"))
	assert.Equal(t, "https://acme.com", NormalizeWebsiteURL("https://acme.com"))
}

func TestToneInstruction(t *testing.T) {
	assert.Equal(t, "Use short and precise answers.", ToneMinimalist.Instruction())
	assert.Equal(t, "Be professional and solution oriented.", Tone("unknown").Instruction())
}

func TestLoadCompanyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "company.yaml")
	err := os.WriteFile(path, []byte("companyName: Acme\ntone: formal\nwebsiteUrl: acme.com\n"), 0o600)
	require.NoError(t, err)

	config, err := LoadCompanyConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Acme", config.CompanyName)
	assert.Equal(t, ToneFormal, config.Tone)
	assert.Equal(t, "https://acme.com", config.WebsiteURL)
	assert.Equal(t, DefaultCompanyConfig().Context, config.Context)
}

func TestLoadCompanyConfigEmptyPath(t *testing.T) {
	config, err := LoadCompanyConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultCompanyConfig(), config)
}

func TestLoadCompanyConfigNegativeMissingFile(t *testing.T) {
	_, err := LoadCompanyConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSystemInstructionNewClient(t *testing.T) {
	company := DefaultCompanyConfig()

	instruction := SystemInstruction(company, newClient())

	assert.Contains(t, instruction, "You are the technical A.I. of the company ArchTools.")
	assert.Contains(t, instruction, "Name: Ana Silva")
	assert.Contains(t, instruction, "Status: NEW CLIENT")
	assert.Contains(t, instruction, "- Typology: Residential")
	assert.Contains(t, instruction, `"Interior renders and a virtual tour"`)
	assert.Contains(t, instruction, "'send_analysis_email'")
	assert.Contains(t, instruction, company.Context)
	assert.Contains(t, instruction, "TONE OF VOICE: "+ToneInnovative.Instruction())
}

func TestSystemInstructionExistingClient(t *testing.T) {
	user := UserProfile{Name: "Bruno", Company: "Vista", Project: "Sea View", ClientType: ClientTypeExisting}

	instruction := SystemInstruction(DefaultCompanyConfig(), user)

	assert.Contains(t, instruction, "Status: RETURNING CLIENT")
	assert.NotContains(t, instruction, "INITIAL TECHNICAL DATA")
}

func TestSystemInstructionMissingNewClientData(t *testing.T) {
	user := UserProfile{Name: "Ana", Company: "Horizon", Project: "Tower", ClientType: ClientTypeNew}

	instruction := SystemInstruction(DefaultCompanyConfig(), user)

	assert.Contains(t, instruction, "- Typology: N/A")
	assert.Contains(t, instruction, `Reported demand/problem: "N/A"`)
}
