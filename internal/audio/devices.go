package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// DefaultDeviceName is the sentinel that selects the platform default
// input device (no explicit device index).
const DefaultDeviceName = "default"

// ListDevices enumerates input-capable device names, "default" first.
// PortAudio must not be held open by a recording while enumerating; the
// capture initializes and terminates its own context around the query.
func (c *Capture) ListDevices() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer func() { _ = portaudio.Terminate() }()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}

	names := []string{DefaultDeviceName}
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			names = append(names, d.Name)
		}
	}
	return names, nil
}

// openInputStream opens a mono 16 kHz callback stream on the named
// device, falling back to the default device for the sentinel name.
func openInputStream(device string, callback func(in []float32)) (*portaudio.Stream, error) {
	if device == "" || device == DefaultDeviceName {
		stream, err := portaudio.OpenDefaultStream(1, 0, float64(SampleRate), framesPerBuffer, callback)
		if err != nil {
			return nil, fmt.Errorf("open default stream: %w", err)
		}
		return stream, nil
	}

	info, err := findInputDevice(device)
	if err != nil {
		return nil, err
	}

	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(SampleRate)
	params.FramesPerBuffer = framesPerBuffer

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return nil, fmt.Errorf("open stream for %q: %w", device, err)
	}
	return stream, nil
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("query devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("input device %q not found", name)
}
