package room

// DriverType selects the hardware adapter used to command a matrix.
type DriverType string

// Supported matrix drivers.
const (
	// DriverMQTT commands the matrix through a protocol bridge over MQTT.
	DriverMQTT DriverType = "mqtt"

	// DriverQuartz talks the Evertz Quartz protocol directly over TCP.
	DriverQuartz DriverType = "quartz"

	// DriverSimulated keeps the crosspoint table in memory.
	DriverSimulated DriverType = "simulated"
)

// ValidDriverType reports whether t names a supported driver.
func ValidDriverType(t DriverType) bool {
	switch t {
	case DriverMQTT, DriverQuartz, DriverSimulated:
		return true
	default:
		return false
	}
}

// Info identifies the room.
type Info struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Source is a signal origin wired to one matrix input.
type Source struct {
	ID     string   `yaml:"id" json:"id"`
	Label  string   `yaml:"label" json:"label"`
	Icon   string   `yaml:"icon,omitempty" json:"icon,omitempty"`
	Tags   []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Matrix string   `yaml:"matrix" json:"matrix"`
	Input  int      `yaml:"input" json:"input"`

	// ControlID references a transport-control device (e.g. a cable box
	// remote). Routing passes it through untouched.
	ControlID string `yaml:"control_id,omitempty" json:"control_id,omitempty"`
}

// Destination is a signal sink wired to one matrix output.
type Destination struct {
	ID     string   `yaml:"id" json:"id"`
	Label  string   `yaml:"label" json:"label"`
	Icon   string   `yaml:"icon,omitempty" json:"icon,omitempty"`
	Tags   []string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Matrix string   `yaml:"matrix" json:"matrix"`
	Output int      `yaml:"output" json:"output"`
}

// Driver holds the connection details for a matrix.
type Driver struct {
	Type DriverType `yaml:"type" json:"type"`

	// Address is the MQTT topic address for mqtt drivers and the host
	// for quartz drivers.
	Address string `yaml:"address,omitempty" json:"address,omitempty"`

	// Port is the TCP port for quartz drivers.
	Port int `yaml:"port,omitempty" json:"port,omitempty"`

	// Levels lists the quartz router levels switched together (0 = video).
	Levels []int `yaml:"levels,omitempty" json:"levels,omitempty"`
}

// Matrix is a crossbar switcher: any input can reach any output.
type Matrix struct {
	ID      string `yaml:"id" json:"id"`
	Label   string `yaml:"label,omitempty" json:"label,omitempty"`
	Inputs  int    `yaml:"inputs" json:"inputs"`
	Outputs int    `yaml:"outputs" json:"outputs"`
	Driver  Driver `yaml:"driver" json:"driver"`
}

// TieLine is a static cable between two matrix ports, usually an output
// of one matrix and an input of another (e.g. "MX1.OUT.2" to "MX2.IN.1").
type TieLine struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Preset is a named set of routes recalled together, such as
// "Presentation" or "Video Conference".
type Preset struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Icon        string       `yaml:"icon,omitempty" json:"icon,omitempty"`
	Disabled    bool         `yaml:"disabled,omitempty" json:"disabled"`
	Steps       []PresetStep `yaml:"steps" json:"steps"`
}

// PresetStep routes one source to one destination.
//
// Steps run in order. A step with Parallel set joins the previous step's
// group and runs concurrently with it.
type PresetStep struct {
	Input  string `yaml:"input" json:"input"`
	Output string `yaml:"output" json:"output"`

	// DelayMS waits before the step runs (e.g. for a projector to warm up).
	DelayMS int `yaml:"delay_ms,omitempty" json:"delay_ms,omitempty"`

	Parallel bool `yaml:"parallel,omitempty" json:"parallel,omitempty"`

	// ContinueOnError keeps the recall going when this step fails.
	// The default is to stop after the failing group.
	ContinueOnError bool `yaml:"continue_on_error,omitempty" json:"continue_on_error,omitempty"`
}

// Room is the full equipment inventory used to build the routing topology.
type Room struct {
	Info         Info          `yaml:"room" json:"room"`
	Matrices     []Matrix      `yaml:"matrices" json:"matrices"`
	Sources      []Source      `yaml:"sources" json:"sources"`
	Destinations []Destination `yaml:"destinations" json:"destinations"`
	TieLines     []TieLine     `yaml:"tie_lines" json:"tie_lines"`
	Presets      []Preset      `yaml:"presets,omitempty" json:"presets,omitempty"`
}
