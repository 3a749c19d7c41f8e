package importer

import (
	"regexp"
	"strings"
	"time"

	"github.com/guardiao/base-security-service/internal/models"
	"go.uber.org/zap"
)

// Logical fields a pasted spreadsheet column can map to.
const (
	fieldGate              = "gate"
	fieldName              = "name"
	fieldCharacteristic    = "characteristic"
	fieldIdentification    = "identification"
	fieldAccessMode        = "accessMode"
	fieldCategoryPrimary   = "categoryPrimary"
	fieldCategorySecondary = "categorySecondary"
	fieldVehicleModel      = "vehicleModel"
	fieldVehiclePlate      = "vehiclePlate"
	fieldDestination       = "destination"
	fieldAuthorizer        = "authorizer"
	fieldDate              = "date"
	fieldTime              = "time"
)

// columnKeywords maps each logical field to the header fragments that locate
// its column. Matching is case-insensitive substring; the first header cell
// containing any fragment wins, and two fields may share a column when the
// headers are ambiguous.
var columnKeywords = map[string][]string{
	fieldGate:              {"GUARDA", "PORTÃO"},
	fieldName:              {"NOME"},
	fieldCharacteristic:    {"CARACTERISTICA", "CARACTERÍSTICA"},
	fieldIdentification:    {"IDENTIDADE", "IDENTIFICAÇÃO", "DOCUMENTO"},
	fieldAccessMode:        {"FORMA", "MODO", "INGRESSO"},
	fieldCategoryPrimary:   {"CATEGORIA"},
	fieldCategorySecondary: {"TIPO"},
	fieldVehicleModel:      {"MODELO", "VEÍCULO", "VEICULO"},
	fieldVehiclePlate:      {"PLACA"},
	fieldDestination:       {"DESTINO"},
	fieldAuthorizer:        {"AUTORIZA"},
	fieldDate:              {"CARIMBO", "DATA"},
	fieldTime:              {"HORA"},
}

const columnNotFound = -1

var (
	datePattern = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)
	timePattern = regexp.MustCompile(`\d{1,2}:\d{2}(:\d{2})?`)
)

// resolveColumns maps every logical field to a column index in one pass over
// the header cells. Absent fields resolve to columnNotFound.
func resolveColumns(headerCells []string) map[string]int {
	upper := make([]string, len(headerCells))
	for i, cell := range headerCells {
		upper[i] = strings.ToUpper(strings.TrimSpace(cell))
	}

	columns := make(map[string]int, len(columnKeywords))
	for field, keywords := range columnKeywords {
		columns[field] = columnNotFound
		for i, cell := range upper {
			if containsAny(cell, keywords) {
				columns[field] = i
				break
			}
		}
	}
	return columns
}

func containsAny(cell string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(cell, kw) {
			return true
		}
	}
	return false
}

func cellAt(cells []string, index int) string {
	if index == columnNotFound || index >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[index])
}

// normalizeGate maps arbitrary gate text onto exactly one of G1/G2/G3.
// Anything without a recognizable gate substring lands on G1.
func normalizeGate(raw string) string {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "G2"):
		return models.GateG2
	case strings.Contains(upper, "G3"):
		return models.GateG3
	default:
		return models.GateG1
	}
}

// inferCategory decides Entrada/Saída from both category cells with OR
// semantics; either cell mentioning an exit (with or without the accent)
// makes the row a Saída.
func inferCategory(primary, secondary string) string {
	combined := strings.ToUpper(primary) + " " + strings.ToUpper(secondary)
	if strings.Contains(combined, "SAÍDA") || strings.Contains(combined, "SAIDA") {
		return models.CategorySaida
	}
	return models.CategoryEntrada
}

// normalizeCharacteristic maps free text onto the closed characteristic set.
func normalizeCharacteristic(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	switch upper {
	case models.CharacteristicMilitar, models.CharacteristicCivil,
		models.CharacteristicPrestador, models.CharacteristicEntregador:
		return upper
	}
	if strings.Contains(upper, "MILITAR") {
		return models.CharacteristicMilitar
	}
	if strings.Contains(upper, "CIVIL") {
		return models.CharacteristicCivil
	}
	return models.CharacteristicCivil
}

// resolveDateCell cleans the located date cell and falls back to scanning the
// whole row when the cell does not look like a date.
func resolveDateCell(cells []string, index int) string {
	raw := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(cellAt(cells, index)), "-"))
	if strings.Contains(raw, "/") {
		return raw
	}
	for _, cell := range cells {
		if match := datePattern.FindString(cell); match != "" {
			return match
		}
	}
	return raw
}

// resolveTimeCell mirrors resolveDateCell for the time component.
func resolveTimeCell(cells []string, index int) string {
	raw := cellAt(cells, index)
	if strings.Contains(raw, ":") {
		return raw
	}
	for _, cell := range cells {
		if match := timePattern.FindString(cell); match != "" {
			return match
		}
	}
	return raw
}

// buildTimestamp combines a day/month/year date and an hour:minute[:second]
// time into one instant. Malformed or impossible values (31/02) are non-fatal:
// the row keeps the import instant.
func buildTimestamp(dateStr, timeStr string, now time.Time, logger *zap.Logger) time.Time {
	dateStr = strings.TrimSpace(dateStr)
	timeStr = strings.TrimSpace(timeStr)
	if dateStr == "" || timeStr == "" {
		return now
	}

	if match := datePattern.FindString(dateStr); match != "" {
		dateStr = match
	}
	if strings.Count(timeStr, ":") == 1 {
		timeStr += ":00"
	}

	ts, err := time.ParseInLocation("02/01/2006 15:04:05", dateStr+" "+timeStr, time.Local)
	if err != nil {
		logger.Warn("unparseable import timestamp, defaulting to now",
			zap.String("date", dateStr),
			zap.String("time", timeStr),
		)
		return now
	}
	return ts
}

// parseRows converts the pasted block into access-log entries. The first
// non-empty line is the header; rows with fewer than two cells are skipped.
func parseRows(text string, registeredBy string, now time.Time, logger *zap.Logger) []models.AccessLogEntry {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	headerIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			headerIdx = i
			break
		}
	}
	if headerIdx == -1 {
		return nil
	}

	columns := resolveColumns(strings.Split(lines[headerIdx], "\t"))

	var entries []models.AccessLogEntry
	for _, line := range lines[headerIdx+1:] {
		cells := strings.Split(line, "\t")
		if len(cells) < 2 {
			continue
		}

		gate := cellAt(cells, columns[fieldGate])
		if gate == "" {
			gate = "PORTÃO G1"
		}
		characteristic := cellAt(cells, columns[fieldCharacteristic])
		if characteristic == "" {
			characteristic = models.CharacteristicMilitar
		}
		name := cellAt(cells, columns[fieldName])
		if name == "" {
			name = "NÃO INFORMADO"
		}
		mode := cellAt(cells, columns[fieldAccessMode])
		if mode == "" {
			mode = models.ModePedestre
		}

		var dateStr, timeStr string
		if columns[fieldDate] != columnNotFound {
			dateStr = resolveDateCell(cells, columns[fieldDate])
		}
		if columns[fieldTime] != columnNotFound {
			timeStr = resolveTimeCell(cells, columns[fieldTime])
		}

		entries = append(entries, models.AccessLogEntry{
			Timestamp:      buildTimestamp(dateStr, timeStr, now, logger),
			GuardGate:      normalizeGate(gate),
			Name:           name,
			Characteristic: normalizeCharacteristic(characteristic),
			Identification: cellAt(cells, columns[fieldIdentification]),
			AccessMode:     mode,
			AccessCategory: inferCategory(
				cellAt(cells, columns[fieldCategoryPrimary]),
				cellAt(cells, columns[fieldCategorySecondary]),
			),
			VehicleModel:   cellAt(cells, columns[fieldVehicleModel]),
			VehiclePlate:   cellAt(cells, columns[fieldVehiclePlate]),
			Destination:    cellAt(cells, columns[fieldDestination]),
			Authorizer:     cellAt(cells, columns[fieldAuthorizer]),
			RegisteredBy:   registeredBy,
		})
	}
	return entries
}
