package sentryotel

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

// scalar is an optional context value that must be a string, number, or
// boolean. JSON null leaves it unset. Objects and arrays are rejected.
type scalar struct {
	value attribute.Value
	set   bool
}

func (s *scalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*s = scalar{}
	if len(b) == 0 {
		return errors.Errorf("empty value")
	}
	switch b[0] {
	case 'n':
		return nil
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.value, s.set = attribute.BoolValue(v), true
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		s.value, s.set = attribute.StringValue(v), true
	case '{', '[':
		return errors.Errorf("expected a scalar, got %s", shapeOf(b[0]))
	default:
		if i, err := strconv.ParseInt(string(b), 10, 64); err == nil {
			s.value, s.set = attribute.Int64Value(i), true
			return nil
		}
		f, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return errors.Wrapf(err, "parse number %s", string(b))
		}
		s.value, s.set = attribute.Float64Value(f), true
	}
	return nil
}

func shapeOf(c byte) string {
	if c == '{' {
		return "an object"
	}
	return "an array"
}

type appContext struct {
	BuildType  scalar `json:"build_type"`
	Identifier scalar `json:"app_identifier"`
	Memory     scalar `json:"app_memory"`
	Name       scalar `json:"app_name"`
	StartTime  scalar `json:"app_start_time"`
	Version    scalar `json:"app_version"`
}

type responseContext struct {
	StatusCode scalar            `json:"status_code"`
	BodySize   scalar            `json:"body_size"`
	Headers    map[string]scalar `json:"headers"`
}

type cloudResourceContext struct {
	Provider         scalar `json:"cloud.provider"`
	AccountID        scalar `json:"cloud.account.id"`
	Region           scalar `json:"cloud.region"`
	AvailabilityZone scalar `json:"cloud.availability_zone"`
	Platform         scalar `json:"cloud.platform"`
	HostID           scalar `json:"host.id"`
	HostType         scalar `json:"host.type"`
}

type osContext struct {
	Build         scalar `json:"build"`
	KernelVersion scalar `json:"kernel_version"`
	Name          scalar `json:"name"`
	Version       scalar `json:"version"`
}

type deviceContext struct {
	UniqueIdentifier        scalar `json:"device_unique_identifier"`
	Manufacturer            scalar `json:"manufacturer"`
	ModelID                 scalar `json:"model_id"`
	Model                   scalar `json:"model"`
	DeviceType              scalar `json:"device_type"`
	BatteryLevel            scalar `json:"battery_level"`
	BatteryStatus           scalar `json:"battery_status"`
	Orientation             scalar `json:"orientation"`
	Brand                   scalar `json:"brand"`
	ScreenResolution        scalar `json:"screen_resolution"`
	ScreenHeightPixels      scalar `json:"screen_height_pixels"`
	ScreenWidthPixels       scalar `json:"screen_width_pixels"`
	ScreenDensity           scalar `json:"screen_density"`
	ScreenDPI               scalar `json:"screen_dpi"`
	Online                  scalar `json:"online"`
	Charging                scalar `json:"charging"`
	SupportsVibration       scalar `json:"supports_vibration"`
	SupportsAccelerometer   scalar `json:"supports_accelerometer"`
	SupportsGyroscope       scalar `json:"supports_gyroscope"`
	SupportsAudio           scalar `json:"supports_audio"`
	SupportsLocationService scalar `json:"supports_location_service"`
	BootTime                scalar `json:"boot_time"`
	LowMemory               scalar `json:"low_memory"`
	Simulator               scalar `json:"simulator"`
	MemorySize              scalar `json:"memory_size"`
	FreeMemory              scalar `json:"free_memory"`
	UsableMemory            scalar `json:"usable_memory"`
	StorageSize             scalar `json:"storage_size"`
	FreeStorage             scalar `json:"free_storage"`
	ExternalStorageSize     scalar `json:"external_storage_size"`
	ExternalFreeStorage     scalar `json:"external_free_storage"`
	CPUDescription          scalar `json:"cpu_description"`
	ProcessorCount          scalar `json:"processor_count"`
	ProcessorFrequency      scalar `json:"processor_frequency"`
}

// tags is what goes into exception.tags. Absent members are omitted
// entirely so an event with neither becomes {}.
type tags struct {
	Culture     interface{} `json:"culture,omitempty"`
	Environment string      `json:"environment,omitempty"`
}
