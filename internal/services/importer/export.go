package importer

import (
	"strings"

	"github.com/guardiao/base-security-service/internal/models"
)

// exportHeader lists the canonical column titles. Each title resolves its own
// field under the header keyword table, so exported text can be pasted back
// through Import without changing any normalized value.
var exportHeader = []string{
	"DATA",
	"HORA",
	"GUARDA/PORTÃO",
	"NOME",
	"CARACTERÍSTICA",
	"IDENTIDADE",
	"FORMA DE INGRESSO",
	"TIPO DE ACESSO",
	"MODELO DO VEÍCULO",
	"PLACA",
	"DESTINO",
	"AUTORIZADOR",
}

// Export renders entries as tab-separated text with the canonical header.
func Export(entries []models.AccessLogEntry) string {
	var b strings.Builder
	b.WriteString(strings.Join(exportHeader, "\t"))
	b.WriteByte('\n')

	for _, entry := range entries {
		row := []string{
			entry.Timestamp.Format("02/01/2006"),
			entry.Timestamp.Format("15:04:05"),
			entry.GuardGate,
			entry.Name,
			entry.Characteristic,
			entry.Identification,
			entry.AccessMode,
			entry.AccessCategory,
			entry.VehicleModel,
			entry.VehiclePlate,
			entry.Destination,
			entry.Authorizer,
		}
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}
