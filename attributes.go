package sentryotel

import (
	"encoding/json"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
)

// Keys that have no OTEL semantic convention equivalent.
const (
	ExceptionModulesKey = attribute.Key("exception.modules")
	ExceptionTagsKey    = attribute.Key("exception.tags")

	// HTTPResponseHeaderPrefix is followed by the header name.
	HTTPResponseHeaderPrefix = "http.response.header."

	appBuildTypeKey = attribute.Key("app.build_type")
	appIDKey        = attribute.Key("app.id")
	appMemoryKey    = attribute.Key("app.memory")
	appNameKey      = attribute.Key("app.name")
	appStartTimeKey = attribute.Key("app.start_time")
	appVersionKey   = attribute.Key("app.version")

	osBuildIDKey       = attribute.Key("os.build_id")
	osKernelVersionKey = attribute.Key("os.kernel_version")

	deviceIDKey                      = attribute.Key("device.id")
	deviceManufacturerKey            = attribute.Key("device.manufacturer")
	deviceModelIdentifierKey         = attribute.Key("device.model.identifier")
	deviceModelNameKey               = attribute.Key("device.model.name")
	deviceTypeKey                    = attribute.Key("device.type")
	deviceBatteryLevelKey            = attribute.Key("device.battery_level")
	deviceBatteryStatusKey           = attribute.Key("device.battery_status")
	deviceOrientationKey             = attribute.Key("device.orientation")
	deviceBrandKey                   = attribute.Key("device.brand")
	deviceScreenResolutionKey        = attribute.Key("device.screen_resolution")
	deviceScreenHeightPixelsKey      = attribute.Key("device.screen_height_pixels")
	deviceScreenWidthPixelsKey       = attribute.Key("device.screen_width_pixels")
	deviceScreenDensityKey           = attribute.Key("device.screen_density")
	deviceScreenDPIKey               = attribute.Key("device.screen_dpi")
	deviceOnlineKey                  = attribute.Key("device.online")
	deviceChargingKey                = attribute.Key("device.charging")
	deviceSupportsVibrationKey       = attribute.Key("device.supports_vibration")
	deviceSupportsAccelerometerKey   = attribute.Key("device.supports_accelerometer")
	deviceSupportsGyroscopeKey       = attribute.Key("device.supports_gyroscope")
	deviceSupportsAudioKey           = attribute.Key("device.supports_audio")
	deviceSupportsLocationServiceKey = attribute.Key("device.supports_location_service")
	deviceBootTimeKey                = attribute.Key("device.boot_time")
	deviceLowMemoryKey               = attribute.Key("device.low_memory")
	deviceSimulatorKey               = attribute.Key("device.simulator")
	deviceMemorySizeKey              = attribute.Key("device.memory_size")
	deviceFreeMemoryKey              = attribute.Key("device.free_memory")
	deviceUsableMemoryKey            = attribute.Key("device.usable_memory")
	deviceStorageSizeKey             = attribute.Key("device.storage_size")
	deviceFreeStorageKey             = attribute.Key("device.free_storage")
	deviceExternalStorageSizeKey     = attribute.Key("device.external_storage_size")
	deviceExternalFreeStorageKey     = attribute.Key("device.external_free_storage")
	hostCPUModelNameKey              = attribute.Key("host.cpu.model.name")
	hostCPUCountKey                  = attribute.Key("host.cpu.count")
	hostCPUFrequencyKey              = attribute.Key("host.cpu.frequency")
)

// Names of the sentry contexts that are mapped.
const (
	appContextName           = "app"
	responseContextName      = "response"
	cloudResourceContextName = "cloud_resource"
	osContextName            = "os"
	deviceContextName        = "device"
	cultureContextName       = "culture"
)

type builder struct {
	attributes []attribute.KeyValue
}

func (b *builder) scalar(k attribute.Key, v scalar) {
	if !v.set {
		return
	}
	b.attributes = append(b.attributes, attribute.KeyValue{Key: k, Value: v.value})
}

func (b *builder) String(k attribute.Key, v string) {
	b.attributes = append(b.attributes, k.String(v))
}

func (b *builder) JSON(k attribute.Key, v interface{}) error {
	enc, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", k)
	}
	b.String(k, string(enc))
	return nil
}

// Attributes builds the flat attribute list for the span synthesized from
// event. Sections whose source is absent contribute nothing, with the
// exception of exception.tags which is always present.
func (c *Converter) Attributes(event *sentry.Event) ([]attribute.KeyValue, error) {
	if event == nil {
		return nil, errors.Errorf("nil event")
	}
	var b builder
	if event.Modules != nil {
		if err := b.JSON(ExceptionModulesKey, event.Modules); err != nil {
			return nil, err
		}
	}

	t := tags{Environment: event.Environment}
	if culture, ok := event.Contexts[cultureContextName]; ok && culture != nil {
		t.Culture = culture
	}
	if err := b.JSON(ExceptionTagsKey, t); err != nil {
		return nil, err
	}

	var app appContext
	if ok, err := decodeContext(event, appContextName, &app); err != nil {
		return nil, err
	} else if ok {
		b.scalar(appBuildTypeKey, app.BuildType)
		b.scalar(appIDKey, app.Identifier)
		b.scalar(appMemoryKey, app.Memory)
		b.scalar(appNameKey, app.Name)
		b.scalar(appStartTimeKey, app.StartTime)
		b.scalar(appVersionKey, app.Version)
	}

	var response responseContext
	if ok, err := decodeContext(event, responseContextName, &response); err != nil {
		return nil, err
	} else if ok {
		b.scalar(semconv.HTTPStatusCodeKey, response.StatusCode)
		b.scalar(semconv.HTTPResponseContentLengthKey, response.BodySize)
		for name, value := range response.Headers {
			b.scalar(attribute.Key(HTTPResponseHeaderPrefix+name), value)
		}
	}

	var cloud cloudResourceContext
	if ok, err := decodeContext(event, cloudResourceContextName, &cloud); err != nil {
		return nil, err
	} else if ok {
		b.scalar(semconv.CloudProviderKey, cloud.Provider)
		b.scalar(semconv.CloudAccountIDKey, cloud.AccountID)
		b.scalar(semconv.CloudRegionKey, cloud.Region)
		b.scalar(semconv.CloudAvailabilityZoneKey, cloud.AvailabilityZone)
		b.scalar(semconv.CloudPlatformKey, cloud.Platform)
		b.scalar(semconv.HostIDKey, cloud.HostID)
		b.scalar(semconv.HostTypeKey, cloud.HostType)
	}

	var osc osContext
	if ok, err := decodeContext(event, osContextName, &osc); err != nil {
		return nil, err
	} else if ok {
		b.scalar(osBuildIDKey, osc.Build)
		b.scalar(osKernelVersionKey, osc.KernelVersion)
		b.scalar(semconv.OSTypeKey, osc.Name)
		b.scalar(semconv.OSVersionKey, osc.Version)
	}

	var device deviceContext
	if ok, err := decodeContext(event, deviceContextName, &device); err != nil {
		return nil, err
	} else if ok {
		device.build(&b)
	}

	if event.ServerName != "" {
		b.String(semconv.HostNameKey, event.ServerName)
	}
	return b.attributes, nil
}

func (d *deviceContext) build(b *builder) {
	b.scalar(deviceIDKey, d.UniqueIdentifier)
	b.scalar(deviceManufacturerKey, d.Manufacturer)
	b.scalar(deviceModelIdentifierKey, d.ModelID)
	b.scalar(deviceModelNameKey, d.Model)
	b.scalar(deviceTypeKey, d.DeviceType)
	b.scalar(deviceBatteryLevelKey, d.BatteryLevel)
	b.scalar(deviceBatteryStatusKey, d.BatteryStatus)
	b.scalar(deviceOrientationKey, d.Orientation)
	b.scalar(deviceBrandKey, d.Brand)
	b.scalar(deviceScreenResolutionKey, d.ScreenResolution)
	b.scalar(deviceScreenHeightPixelsKey, d.ScreenHeightPixels)
	b.scalar(deviceScreenWidthPixelsKey, d.ScreenWidthPixels)
	b.scalar(deviceScreenDensityKey, d.ScreenDensity)
	b.scalar(deviceScreenDPIKey, d.ScreenDPI)
	b.scalar(deviceOnlineKey, d.Online)
	b.scalar(deviceChargingKey, d.Charging)
	b.scalar(deviceSupportsVibrationKey, d.SupportsVibration)
	b.scalar(deviceSupportsAccelerometerKey, d.SupportsAccelerometer)
	b.scalar(deviceSupportsGyroscopeKey, d.SupportsGyroscope)
	b.scalar(deviceSupportsAudioKey, d.SupportsAudio)
	b.scalar(deviceSupportsLocationServiceKey, d.SupportsLocationService)
	b.scalar(deviceBootTimeKey, d.BootTime)
	b.scalar(deviceLowMemoryKey, d.LowMemory)
	b.scalar(deviceSimulatorKey, d.Simulator)
	b.scalar(deviceMemorySizeKey, d.MemorySize)
	b.scalar(deviceFreeMemoryKey, d.FreeMemory)
	b.scalar(deviceUsableMemoryKey, d.UsableMemory)
	b.scalar(deviceStorageSizeKey, d.StorageSize)
	b.scalar(deviceFreeStorageKey, d.FreeStorage)
	b.scalar(deviceExternalStorageSizeKey, d.ExternalStorageSize)
	b.scalar(deviceExternalFreeStorageKey, d.ExternalFreeStorage)
	b.scalar(hostCPUModelNameKey, d.CPUDescription)
	b.scalar(hostCPUCountKey, d.ProcessorCount)
	b.scalar(hostCPUFrequencyKey, d.ProcessorFrequency)
}

// decodeContext fills into from the named sentry context. It reports
// false, without error, when the context is absent.
func decodeContext(event *sentry.Event, name string, into interface{}) (bool, error) {
	raw, ok := event.Contexts[name]
	if !ok || raw == nil {
		return false, nil
	}
	enc, err := json.Marshal(raw)
	if err != nil {
		return false, errors.Wrapf(err, "encode %s context", name)
	}
	if err := json.Unmarshal(enc, into); err != nil {
		return false, errors.Wrapf(err, "decode %s context", name)
	}
	return true, nil
}
