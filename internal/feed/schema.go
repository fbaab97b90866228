package feed

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Feed names.
const (
	Main    = "main"
	Metrics = "metrics"
)

// Main feed field keys.
const (
	FieldFecha         = "fecha"
	FieldTotalQss      = "total_qss"
	FieldQQPreseco     = "qq_preseco"
	FieldQQMojado      = "qq_mojado"
	FieldQQHumedo      = "qq_humedo"
	FieldSecProceso    = "sec_proceso"
	FieldQQProceso     = "qq_proceso"
	FieldSecPendientes = "sec_pendientes"
	FieldQQPendientes  = "qq_pendientes"
	FieldSecEnviadas   = "sec_enviadas"
	FieldQQEnviados    = "qq_enviados"
	FieldVertProceso   = "vert_proceso"
	FieldQQVertProceso = "qq_vert_proceso"
)

// Metrics feed field keys. The metrics date column also uses FieldFecha.
const (
	FieldTurnos              = "turnos"
	FieldParosProgramados    = "paros_programados"
	FieldParosNoProgramados  = "paros_no_programados"
	FieldTiempoTotal         = "tiempo_total"
	FieldTiempoMuerto        = "tiempo_muerto"
	FieldQQsMojadoIngresados = "qqs_mojado_ingresados"
	FieldProcesados          = "procesados"
	FieldRechazados          = "rechazados"
	FieldDisponibilidad      = "disponibilidad"
	FieldDesempeno           = "desempeno"
	FieldCalidad             = "calidad"
	FieldOEE                 = "oee"
	FieldQQsMojadoEntrados   = "qqs_mojado_entrados"
)

// Schema is the declarative field table for one feed. DateField names the
// field used by the row selector.
type Schema struct {
	Name      string      `yaml:"name"`
	DateField string      `yaml:"date_field"`
	Fields    []FieldSpec `yaml:"fields"`
}

// Field returns the spec for key.
func (s Schema) Field(key string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Validate checks that keys are unique and non-empty and that the date field
// is declared.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return eris.Errorf("feed: schema %q has no fields", s.Name)
	}
	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		if strings.TrimSpace(f.Key) == "" {
			return eris.Errorf("feed: schema %q field %d has no key", s.Name, i)
		}
		if seen[f.Key] {
			return eris.Errorf("feed: schema %q declares %q twice", s.Name, f.Key)
		}
		seen[f.Key] = true
	}
	if s.DateField != "" && !seen[s.DateField] {
		return eris.Errorf("feed: schema %q date field %q is not declared", s.Name, s.DateField)
	}
	return nil
}

// MainSchema is the field table for the production (main) feed. Only the
// date falls back to a position; the remaining columns are matched by name.
func MainSchema() Schema {
	return Schema{
		Name:      Main,
		DateField: FieldFecha,
		Fields: []FieldSpec{
			{Key: FieldFecha, Aliases: []string{"Fecha"}, Contains: []string{"fecha", "date", "día"}, Fallback: PositionLast},
			{Key: FieldTotalQss, Aliases: []string{"Total QQs", "Total Qss", "Total QQ"}, Fallback: PositionNone},
			{Key: FieldQQPreseco, Aliases: []string{"qq pre-seco", "QQ Pre-Seco", "QQ Preseco"}, Fallback: PositionNone},
			{Key: FieldQQMojado, Aliases: []string{"QQs Mojado ingresados", "qq mojado", "QQ Mojado", "QQs Mojado"}, Fallback: PositionNone},
			{Key: FieldQQHumedo, Aliases: []string{"QQ Humedo", "qq humedo", "QQs Humedo"}, Fallback: PositionNone},
			{Key: FieldSecProceso, Aliases: []string{"Secadoras En proceso"}, Fallback: PositionNone},
			{Key: FieldQQProceso, Aliases: []string{"QQ Proceso"}, Fallback: PositionNone},
			{Key: FieldSecPendientes, Aliases: []string{"Secadoras Pendientes"}, Fallback: PositionNone},
			{Key: FieldQQPendientes, Aliases: []string{"QQ pendientes"}, Fallback: PositionNone},
			{Key: FieldSecEnviadas, Aliases: []string{"Secadoras Enviadas"}, Fallback: PositionNone},
			{Key: FieldQQEnviados, Aliases: []string{"QQ Enviados"}, Fallback: PositionNone},
			{Key: FieldVertProceso, Aliases: []string{"Verticales en proceso"}, Fallback: PositionNone},
			{Key: FieldQQVertProceso, Aliases: []string{"QQ Verticales"}, Fallback: PositionNone},
		},
	}
}

// MetricsSchema is the field table for the process metrics feed. Every
// field falls back to its column in the published sheet layout.
func MetricsSchema() Schema {
	return Schema{
		Name:      Metrics,
		DateField: FieldFecha,
		Fields: []FieldSpec{
			{Key: FieldTurnos, Aliases: []string{"Turnos"}, Fallback: At(0)},
			{Key: FieldParosProgramados, Aliases: []string{"Paros Programado", "Paros Programados"}, Fallback: At(1)},
			{Key: FieldParosNoProgramados, Aliases: []string{"Paros no Programados", "Paros No Programados"}, Fallback: At(2)},
			{Key: FieldTiempoTotal, Aliases: []string{"Tiempo Total"}, Fallback: At(3)},
			{Key: FieldTiempoMuerto, Aliases: []string{"Tiempo Muerto"}, Fallback: At(4)},
			{Key: FieldQQsMojadoIngresados, Aliases: []string{"QQs Mojado ingresados"}, Fallback: At(5)},
			{Key: FieldProcesados, Aliases: []string{"Procesados"}, Fallback: At(6)},
			{Key: FieldRechazados, Aliases: []string{"Rechazados"}, Fallback: At(7)},
			{Key: FieldDisponibilidad, Aliases: []string{"Disponibilidad"}, Fallback: At(8)},
			{Key: FieldDesempeno, Aliases: []string{"Desempeño", "Desempeno"}, Fallback: At(9)},
			{Key: FieldCalidad, Aliases: []string{"Calidad"}, Fallback: At(10)},
			{Key: FieldOEE, Aliases: []string{"OEE"}, Fallback: At(11)},
			{Key: FieldFecha, Aliases: []string{"Fecha"}, Contains: []string{"fecha"}, Fallback: At(12)},
			{Key: FieldQQsMojadoEntrados, Aliases: []string{"QQs Mojado entrados"}, Fallback: At(13)},
		},
	}
}

// DefaultSchema returns the built-in schema for a feed name.
func DefaultSchema(name string) (Schema, error) {
	switch name {
	case Main:
		return MainSchema(), nil
	case Metrics:
		return MetricsSchema(), nil
	default:
		return Schema{}, eris.Wrapf(ErrUnknownFeed, "schema for %q", name)
	}
}

// LoadSchema reads a YAML field table that replaces the built-in schema for
// a feed. An empty path returns the built-in schema.
func LoadSchema(name, path string) (Schema, error) {
	if path == "" {
		return DefaultSchema(name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, eris.Wrapf(err, "feed: read schema %s", path)
	}

	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Schema{}, eris.Wrapf(err, "feed: parse schema %s", path)
	}
	if s.Name == "" {
		s.Name = name
	}
	if s.DateField == "" {
		s.DateField = FieldFecha
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}
