package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWeather(t *testing.T) {
	cases := []struct {
		input    string
		expected Weather
		ok       bool
	}{
		{"sunny", WeatherSunny, true},
		{"cloudy", WeatherCloudy, true},
		{"rainy", WeatherRainy, true},
		{"thunder", WeatherThunder, true},
		{"晴れ", WeatherSunny, true},
		{"曇り", WeatherCloudy, true},
		{"雨", WeatherRainy, true},
		{"雷", WeatherThunder, true},
		{"snow", "", false},
		{"はれ", "", false},
		{"", "", false},
		{"SUNNY", "", false},
	}

	for _, c := range cases {
		w, ok := ParseWeather(c.input)
		assert.Equal(t, c.ok, ok, "input=%q", c.input)
		if c.ok {
			assert.Equal(t, c.expected, w, "input=%q", c.input)
		}
	}
}

func TestWeatherValid(t *testing.T) {
	assert.True(t, WeatherSunny.Valid())
	assert.True(t, WeatherThunder.Valid())
	assert.False(t, Weather("snow").Valid())
	assert.False(t, Weather("").Valid())
}

func TestWeatherLabel(t *testing.T) {
	assert.Equal(t, "晴れ", WeatherSunny.Label())
	assert.Equal(t, "曇り", WeatherCloudy.Label())
	assert.Equal(t, "雨", WeatherRainy.Label())
	assert.Equal(t, "雷", WeatherThunder.Label())
}

func TestWeatherString(t *testing.T) {
	// DB保存用の正規トークンと一致すること
	assert.Equal(t, "sunny", WeatherSunny.String())

	w, _ := ParseWeather("晴れ")
	assert.Equal(t, "sunny", w.String())
}
