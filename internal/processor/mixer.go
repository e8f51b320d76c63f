package processor

// MixToMono averages N length-aligned channels into one signal:
// mono[i] = (sum over c of channels[c][i]) / N.
// A single channel is widened to float64 unchanged.
func MixToMono(channels [][]float32) []float64 {
	if len(channels) == 0 {
		return nil
	}

	length := len(channels[0])
	mono := make([]float64, length)

	if len(channels) == 1 {
		for i, s := range channels[0] {
			mono[i] = float64(s)
		}
		return mono
	}

	n := float64(len(channels))
	for i := 0; i < length; i++ {
		var sum float64
		for _, ch := range channels {
			sum += float64(ch[i])
		}
		mono[i] = sum / n
	}
	return mono
}
