package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/geocoder89/fuellog/internal/domain/fueling"
	"github.com/xuri/excelize/v2"
)

// LocalLayout renders timestamps in exports. It has no commas so rows keep 11 columns.
const LocalLayout = "02/01/2006 15:04:05"

const sheetName = "Abastecimentos"

var Headers = []string{
	"ID Registro",
	"Data Registro",
	"Motorista",
	"Veículo",
	"Placa",
	"KM",
	"Custo (R$)",
	"Litros",
	"Tipo Combustível",
	"Data Foto Painel",
	"Data Foto Bomba",
}

// FileName is relatorio_abastecimentos_<YYYY-MM-DD>.<ext>, dated at export time (UTC).
func FileName(now time.Time, ext string) string {
	return "relatorio_abastecimentos_" + now.UTC().Format(dayLayout) + "." + ext
}

func Row(rec fueling.Record, loc *time.Location) []string {
	return []string{
		rec.ID,
		rec.RecordTimestamp.In(loc).Format(LocalLayout),
		rec.DriverName,
		rec.Vehicle,
		rec.VehiclePlate,
		strconv.FormatInt(rec.Mileage, 10),
		strconv.FormatFloat(rec.Cost, 'f', 2, 64),
		strconv.FormatFloat(rec.Liters, 'f', 2, 64),
		string(rec.FuelType),
		rec.DashboardPhoto.Timestamp.In(loc).Format(LocalLayout),
		rec.PumpPhoto.Timestamp.In(loc).Format(LocalLayout),
	}
}

// WriteCSV writes the header plus one row per record. Fields are RFC 4180 quoted
// when they contain a comma, quote or newline.
func WriteCSV(w io.Writer, records []fueling.Record, loc *time.Location) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Headers); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(Row(rec, loc)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same table as a single-sheet workbook, keeping numbers numeric.
func WriteXLSX(w io.Writer, records []fueling.Record, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		row := []interface{}{
			rec.ID,
			rec.RecordTimestamp.In(loc).Format(LocalLayout),
			rec.DriverName,
			rec.Vehicle,
			rec.VehiclePlate,
			rec.Mileage,
			rec.Cost,
			rec.Liters,
			string(rec.FuelType),
			rec.DashboardPhoto.Timestamp.In(loc).Format(LocalLayout),
			rec.PumpPhoto.Timestamp.In(loc).Format(LocalLayout),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}
