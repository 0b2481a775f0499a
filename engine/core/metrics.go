package core

import "sync"

const AVG_COUNT uint8 = 30

type MetricsState struct {
	FrameAVGCounter    uint8
	MStimes            [AVG_COUNT]float64
	MSavg              float64
	Frames             int32
	AccumulatedFrameMS float64
	FPS                float64
}

var metricsMu sync.Mutex
var metricsState *MetricsState = nil

// MetricsInitialize resets the frame statistics.
func MetricsInitialize() error {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	metricsState = &MetricsState{}
	return nil
}

func MetricsUpdate(frameElapsedTime float64) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if metricsState == nil {
		return
	}

	// Calculate frame ms average
	frameMS := frameElapsedTime * 1000.0
	metricsState.MStimes[metricsState.FrameAVGCounter] = frameMS
	if metricsState.FrameAVGCounter == AVG_COUNT-1 {
		sum := 0.0
		for i := uint8(0); i < AVG_COUNT; i++ {
			sum += metricsState.MStimes[i]
		}
		metricsState.MSavg = sum / float64(AVG_COUNT)
	}
	metricsState.FrameAVGCounter++
	metricsState.FrameAVGCounter %= AVG_COUNT

	// Calculate Frames per second.
	metricsState.AccumulatedFrameMS += frameMS
	if metricsState.AccumulatedFrameMS > 1000 {
		metricsState.FPS = float64(metricsState.Frames)
		metricsState.AccumulatedFrameMS -= 1000
		metricsState.Frames = 0
	}

	// Count all Frames.
	metricsState.Frames++
}

func MetricsFPS() float64 {
	fps, _ := MetricsFrame()
	return fps
}

func MetricsFrameTime() float64 {
	_, ms := MetricsFrame()
	return ms
}

// MetricsFrame returns the frames per second and the average frame time in ms.
func MetricsFrame() (float64, float64) {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if metricsState == nil {
		return 0, 0
	}
	return metricsState.FPS, metricsState.MSavg
}
