// Package dashboard turns feed datasets into display-ready views and keeps
// the most recent dataset for each feed.
package dashboard

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/plant-dashboard/internal/feed"
	"github.com/sells-group/plant-dashboard/internal/transform"
)

// View is the formatted output for one feed and date. Slots maps display slot
// ids to final strings; renderers never parse them.
type View struct {
	Feed     string            `json:"feed"`
	Selected string            `json:"selected"`
	Label    string            `json:"label"`
	Title    string            `json:"title"`
	Updated  string            `json:"updated"`
	Slots    map[string]string `json:"slots"`
}

// UpdatedLayout formats View.Updated from the dataset fetch time.
const UpdatedLayout = "02/01/2006 15:04:05"

// Slot returns the value of id, or "" when the view has no such slot.
func (v View) Slot(id string) string { return v.Slots[id] }

// Main feed slot ids.
const (
	SlotFecha         = "fecha"
	SlotTotalQss      = "total-qss"
	SlotQQPreseco     = "qq-preseco"
	SlotQQMojado      = "qq-mojado"
	SlotQQHumedo      = "qq-humedo"
	SlotSecProceso    = "sec-proceso"
	SlotQQProceso     = "qq-proceso"
	SlotSecPendientes = "sec-pendientes"
	SlotQQPendientes  = "qq-pendientes"
	SlotSecEnviadas   = "sec-enviadas"
	SlotQQEnviados    = "qq-enviados"
	SlotVertProceso   = "vert-proceso"
	SlotQQVertProceso = "qq-vert-proceso"
)

// Metrics feed slot ids.
const (
	SlotTurnos              = "turnos"
	SlotParosProgramados    = "paros-programados"
	SlotParosNoProgramados  = "paros-no-programados"
	SlotTiempoTotal         = "tiempo-total"
	SlotTiempoMuerto        = "tiempo-muerto"
	SlotQQsMojadoProcesados = "qqs-mojado-procesados"
	SlotProcesados          = "procesados"
	SlotRechazados          = "rechazados"
	SlotKPIDisponibilidad   = "kpi-disponibilidad"
	SlotKPIDesempeno        = "kpi-desempeno"
	SlotKPICalidad          = "kpi-calidad"
	SlotKPIOEE              = "kpi-oee"
	SlotKPIQQsMojado        = "kpi-qqs-mojado"
)

var mainSlots = []string{
	SlotFecha, SlotTotalQss, SlotQQPreseco, SlotQQMojado, SlotQQHumedo,
	SlotSecProceso, SlotQQProceso, SlotSecPendientes, SlotQQPendientes,
	SlotSecEnviadas, SlotQQEnviados, SlotVertProceso, SlotQQVertProceso,
}

var metricsSlots = []string{
	SlotTurnos, SlotParosProgramados, SlotParosNoProgramados, SlotTiempoTotal,
	SlotTiempoMuerto, SlotQQsMojadoProcesados, SlotProcesados, SlotRechazados,
	SlotKPIDisponibilidad, SlotKPIDesempeno, SlotKPICalidad, SlotKPIOEE, SlotKPIQQsMojado,
}

// SlotOrder returns the display order of a feed's slots.
func SlotOrder(name string) []string {
	switch name {
	case feed.Main:
		return append([]string(nil), mainSlots...)
	case feed.Metrics:
		return append([]string(nil), metricsSlots...)
	default:
		return nil
	}
}

// SlotLabel is the human caption for a slot id.
func SlotLabel(id string) string {
	if l, ok := slotLabels[id]; ok {
		return l
	}
	return id
}

var slotLabels = map[string]string{
	SlotFecha:               "Fecha",
	SlotTotalQss:            "Total QQs",
	SlotQQPreseco:           "QQ Pre-Seco",
	SlotQQMojado:            "QQ Mojado",
	SlotQQHumedo:            "QQ Húmedo",
	SlotSecProceso:          "Secadoras en proceso",
	SlotQQProceso:           "QQ en proceso",
	SlotSecPendientes:       "Secadoras pendientes",
	SlotQQPendientes:        "QQ pendientes",
	SlotSecEnviadas:         "Secadoras enviadas",
	SlotQQEnviados:          "QQ enviados",
	SlotVertProceso:         "Verticales en proceso",
	SlotQQVertProceso:       "QQ verticales",
	SlotTurnos:              "Turnos",
	SlotParosProgramados:    "Paros programados",
	SlotParosNoProgramados:  "Paros no programados",
	SlotTiempoTotal:         "Tiempo total",
	SlotTiempoMuerto:        "Tiempo muerto",
	SlotQQsMojadoProcesados: "QQs mojado procesados",
	SlotProcesados:          "QQs oro bruto procesados",
	SlotRechazados:          "Rechazados",
	SlotKPIDisponibilidad:   "Disponibilidad",
	SlotKPIDesempeno:        "Desempeño",
	SlotKPICalidad:          "Calidad",
	SlotKPIOEE:              "OEE",
	SlotKPIQQsMojado:        "QQs mojado",
}

// SlotBadge is the fixed status caption shown next to a metrics table
// row, or "" for slots without one.
func SlotBadge(id string) string { return slotBadges[id] }

var slotBadges = map[string]string{
	SlotTurnos:              "Normal",
	SlotParosProgramados:    "Planificado",
	SlotParosNoProgramados:  "Crítico",
	SlotTiempoTotal:         "Normal",
	SlotTiempoMuerto:        "Excelente",
	SlotQQsMojadoProcesados: "Nuevo",
	SlotProcesados:          "Normal",
	SlotRechazados:          "Excelente",
}

// Build dispatches to the view builder for the dataset's feed.
func Build(ds *feed.Dataset, sel feed.Selector) (View, error) {
	switch ds.Feed {
	case feed.Main:
		return BuildMain(ds, sel)
	case feed.Metrics:
		return BuildMetrics(ds, sel)
	default:
		return View{}, eris.Wrapf(feed.ErrUnknownFeed, "build view for %q", ds.Feed)
	}
}

// BuildMain formats the production summary for the selected row. Quantities
// are two-decimal numbers defaulting to "0.00"; dryer and vertical counts are
// rounded integers and stay empty when the column is missing.
func BuildMain(ds *feed.Dataset, sel feed.Selector) (View, error) {
	row, err := feed.Select(ds, sel)
	if err != nil {
		return View{}, err
	}
	rec := ds.Record(row)

	date := ds.DateOf(row)
	label := transform.DateLabel(date)

	qty := func(key string) string { return transform.Decimal(rec.Get(key, ""), "0.00") }
	count := func(key string) string {
		v, ok := rec.Lookup(key)
		if !ok {
			return ""
		}
		return transform.IntegerRounded(v)
	}

	return View{
		Feed:     feed.Main,
		Selected: date,
		Label:    label,
		Title:    "Datos de: " + label,
		Updated:  ds.FetchedAt.Format(UpdatedLayout),
		Slots: map[string]string{
			SlotFecha:         label,
			SlotTotalQss:      qty(feed.FieldTotalQss),
			SlotQQPreseco:     qty(feed.FieldQQPreseco),
			SlotQQMojado:      qty(feed.FieldQQMojado),
			SlotQQHumedo:      qty(feed.FieldQQHumedo),
			SlotQQProceso:     qty(feed.FieldQQProceso),
			SlotQQPendientes:  qty(feed.FieldQQPendientes),
			SlotQQEnviados:    qty(feed.FieldQQEnviados),
			SlotQQVertProceso: qty(feed.FieldQQVertProceso),
			SlotSecProceso:    count(feed.FieldSecProceso),
			SlotSecPendientes: count(feed.FieldSecPendientes),
			SlotSecEnviadas:   count(feed.FieldSecEnviadas),
			SlotVertProceso:   count(feed.FieldVertProceso),
		},
	}, nil
}

// BuildMetrics formats the process metrics table and KPI cards for the
// selected row.
func BuildMetrics(ds *feed.Dataset, sel feed.Selector) (View, error) {
	row, err := feed.Select(ds, sel)
	if err != nil {
		return View{}, err
	}
	rec := ds.Record(row)

	date := ds.DateOf(row)
	ingresados := rec.Get(feed.FieldQQsMojadoIngresados, "0")
	mojado := firstNonEmpty(rec.Get(feed.FieldQQsMojadoEntrados, "0"), ingresados, "0")

	return View{
		Feed:     feed.Metrics,
		Selected: date,
		Label:    transform.DateLabel(date),
		Title:    "Métricas de Proceso - " + date,
		Updated:  ds.FetchedAt.Format(UpdatedLayout),
		Slots: map[string]string{
			SlotTurnos:              rec.Get(feed.FieldTurnos, "24:00:00"),
			SlotParosProgramados:    transform.Duration(rec.Get(feed.FieldParosProgramados, "")),
			SlotParosNoProgramados:  transform.Duration(rec.Get(feed.FieldParosNoProgramados, "")),
			SlotTiempoTotal:         transform.Duration(rec.Get(feed.FieldTiempoTotal, "")),
			SlotTiempoMuerto:        transform.Duration(rec.Get(feed.FieldTiempoMuerto, "")),
			SlotQQsMojadoProcesados: ingresados,
			SlotProcesados:          rec.Get(feed.FieldProcesados, "N/A"),
			SlotRechazados:          rec.Get(feed.FieldRechazados, "N/A"),
			SlotKPIDisponibilidad:   transform.Percent(rec.Get(feed.FieldDisponibilidad, "")),
			SlotKPIDesempeno:        transform.Percent(rec.Get(feed.FieldDesempeno, "")),
			SlotKPICalidad:          transform.Percent(rec.Get(feed.FieldCalidad, "")),
			SlotKPIOEE:              transform.Percent(rec.Get(feed.FieldOEE, "")),
			SlotKPIQQsMojado:        transform.Decimal(mojado, "0.00"),
		},
	}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
