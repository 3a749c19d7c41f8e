package importer

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/guardiao/base-security-service/internal/models"
	"go.uber.org/zap"
)

func TestResolveColumns_SubstringCaseInsensitive(t *testing.T) {
	header := []string{"Nº GUARDA/PORTÃO", "Nome Completo", "caracteristica", "Tipo de Acesso"}
	columns := resolveColumns(header)

	if columns[fieldGate] != 0 {
		t.Errorf("expected gate column 0, got %d", columns[fieldGate])
	}
	if columns[fieldName] != 1 {
		t.Errorf("expected name column 1, got %d", columns[fieldName])
	}
	if columns[fieldCharacteristic] != 2 {
		t.Errorf("expected characteristic column 2, got %d", columns[fieldCharacteristic])
	}
	if columns[fieldCategorySecondary] != 3 {
		t.Errorf("expected secondary category column 3, got %d", columns[fieldCategorySecondary])
	}
	if columns[fieldVehiclePlate] != columnNotFound {
		t.Errorf("expected plate column unresolved, got %d", columns[fieldVehiclePlate])
	}
}

func TestResolveColumns_SharedColumnAllowed(t *testing.T) {
	// An ambiguous header may resolve two fields to the same cell.
	columns := resolveColumns([]string{"DATA E HORA", "NOME"})
	if columns[fieldDate] != 0 || columns[fieldTime] != 0 {
		t.Errorf("expected date and time to share column 0, got %d and %d",
			columns[fieldDate], columns[fieldTime])
	}
}

func TestNormalizeGate_TotalFunction(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PORTÃO G1", models.GateG1},
		{"G2-Sul", models.GateG2},
		{"g3 norte", models.GateG3},
		{"Portão 2", models.GateG1}, // no "G2" substring
		{"", models.GateG1},
		{"qualquer coisa", models.GateG1},
	}
	for _, tc := range tests {
		if got := normalizeGate(tc.in); got != tc.want {
			t.Errorf("normalizeGate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestInferCategory_ORSemantics(t *testing.T) {
	tests := []struct {
		primary, secondary string
		want               string
	}{
		{"ENTRADA", "SAÍDA", models.CategorySaida},
		{"SAIDA", "", models.CategorySaida},
		{"", "saída de veículo", models.CategorySaida},
		{"ENTRADA", "ENTRADA", models.CategoryEntrada},
		{"", "", models.CategoryEntrada},
	}
	for _, tc := range tests {
		if got := inferCategory(tc.primary, tc.secondary); got != tc.want {
			t.Errorf("inferCategory(%q, %q) = %q, want %q", tc.primary, tc.secondary, got, tc.want)
		}
	}
}

func TestNormalizeCharacteristic(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MILITAR", models.CharacteristicMilitar},
		{"entregador", models.CharacteristicEntregador},
		{"PRESTADOR", models.CharacteristicPrestador},
		{"Militar da ativa", models.CharacteristicMilitar},
		{"servidor civil", models.CharacteristicCivil},
		{"visitante", models.CharacteristicCivil},
		{"", models.CharacteristicCivil},
	}
	for _, tc := range tests {
		if got := normalizeCharacteristic(tc.in); got != tc.want {
			t.Errorf("normalizeCharacteristic(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseRows_InvalidCalendarDateFallsBackToNow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	text := "DATA\tHORA\tNOME\n31/02/2024\t10:00\tFULANO"

	entries := parseRows(text, "operador", now, zap.NewNop())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if !entries[0].Timestamp.Equal(now) {
		t.Errorf("expected fallback timestamp %v, got %v", now, entries[0].Timestamp)
	}
}

func TestParseRows_ValidDateTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	text := "DATA\tHORA\tNOME\n15/03/2024\t08:30\tFULANO"

	entries := parseRows(text, "operador", now, zap.NewNop())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	want := time.Date(2024, 3, 15, 8, 30, 0, 0, time.Local)
	if !entries[0].Timestamp.Equal(want) {
		t.Errorf("expected timestamp %v, got %v", want, entries[0].Timestamp)
	}
}

func TestParseRows_DateRescuedFromOtherCell(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	// The date column holds junk; the row still carries a recognizable date
	// elsewhere, plus a trailing hyphen on the time cell's neighbor.
	text := "DATA\tHORA\tNOME\tOBSERVAÇÃO\n-\t09:15\tFULANO\t20/05/2024"

	entries := parseRows(text, "operador", now, zap.NewNop())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	want := time.Date(2024, 5, 20, 9, 15, 0, 0, time.Local)
	if !entries[0].Timestamp.Equal(want) {
		t.Errorf("expected rescued timestamp %v, got %v", want, entries[0].Timestamp)
	}
}

func TestParseRows_Defaults(t *testing.T) {
	now := time.Now()
	// Header resolves almost nothing; both cells are unmapped free text.
	text := "COLUNA A\tCOLUNA B\nvalor 1\tvalor 2"

	entries := parseRows(text, "operador", now, zap.NewNop())
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.GuardGate != models.GateG1 {
		t.Errorf("expected default gate G1, got %q", entry.GuardGate)
	}
	if entry.Name != "NÃO INFORMADO" {
		t.Errorf("expected default name, got %q", entry.Name)
	}
	if entry.Characteristic != models.CharacteristicMilitar {
		t.Errorf("expected default characteristic MILITAR, got %q", entry.Characteristic)
	}
	if entry.AccessMode != models.ModePedestre {
		t.Errorf("expected default mode Pedestre, got %q", entry.AccessMode)
	}
	if entry.AccessCategory != models.CategoryEntrada {
		t.Errorf("expected default category Entrada, got %q", entry.AccessCategory)
	}
	if !entry.Timestamp.Equal(now) {
		t.Errorf("expected import-instant timestamp, got %v", entry.Timestamp)
	}
	if entry.RegisteredBy != "operador" {
		t.Errorf("expected registeredBy operador, got %q", entry.RegisteredBy)
	}
}

func TestParseRows_SkipsShortAndBlankRows(t *testing.T) {
	text := "NOME\tIDENTIDADE\n\nFULANO\t123456\nsó-uma-célula\n\t\nBELTRANO\t654321"

	entries := parseRows(text, "operador", time.Now(), zap.NewNop())
	if len(entries) != 3 {
		// the "\t" line splits into two empty cells and is still a (default) row
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Name != "FULANO" || entries[2].Name != "BELTRANO" {
		t.Errorf("unexpected names: %q, %q", entries[0].Name, entries[2].Name)
	}
}

func TestExportReimport_RoundTrip(t *testing.T) {
	now := time.Date(2024, 4, 10, 7, 45, 30, 0, time.Local)
	original := []models.AccessLogEntry{
		{
			Timestamp:      now,
			GuardGate:      models.GateG2,
			Name:           "SGT FULANO",
			Characteristic: models.CharacteristicMilitar,
			Identification: "123456-7",
			AccessMode:     models.ModeVeiculo,
			AccessCategory: models.CategorySaida,
			VehicleModel:   "HILUX",
			VehiclePlate:   "ABC1D23",
			Destination:    "PREFEITURA",
			Authorizer:     "CAP BELTRANO",
		},
		{
			Timestamp:      now.Add(time.Minute),
			GuardGate:      models.GateG1,
			Name:           "MARIA DA SILVA",
			Characteristic: models.CharacteristicCivil,
			AccessMode:     models.ModePedestre,
			AccessCategory: models.CategoryEntrada,
		},
	}

	reimported := parseRows(Export(original), "operador", time.Now(), zap.NewNop())
	if len(reimported) != len(original) {
		t.Fatalf("expected %d entries after round trip, got %d", len(original), len(reimported))
	}
	for i := range original {
		if reimported[i].GuardGate != original[i].GuardGate {
			t.Errorf("row %d: gate changed %q -> %q", i, original[i].GuardGate, reimported[i].GuardGate)
		}
		if reimported[i].AccessCategory != original[i].AccessCategory {
			t.Errorf("row %d: category changed %q -> %q", i, original[i].AccessCategory, reimported[i].AccessCategory)
		}
		if reimported[i].Characteristic != original[i].Characteristic {
			t.Errorf("row %d: characteristic changed %q -> %q", i, original[i].Characteristic, reimported[i].Characteristic)
		}
		if !reimported[i].Timestamp.Equal(original[i].Timestamp) {
			t.Errorf("row %d: timestamp changed %v -> %v", i, original[i].Timestamp, reimported[i].Timestamp)
		}
	}
}

func TestExportHeader_ResolvesEveryField(t *testing.T) {
	columns := resolveColumns(exportHeader)
	for field, index := range columns {
		if index == columnNotFound {
			t.Errorf("export header does not resolve field %q", field)
		}
	}
}

func buildImportText(rows int) string {
	var b strings.Builder
	b.WriteString("NOME\tIDENTIDADE\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "PESSOA %d\t%06d\n", i, i)
	}
	return b.String()
}
