package models

// Weather 天気の閉じた列挙。DBには正規トークン("sunny"等)で保存する
type Weather string

const (
	WeatherSunny   Weather = "sunny"
	WeatherCloudy  Weather = "cloudy"
	WeatherRainy   Weather = "rainy"
	WeatherThunder Weather = "thunder"
)

// weatherAliasMap 入力トークンから天気への対応表。
// 正規トークンと日本語の別名の両方を受け付ける。
// 暗黙の文字列比較をハンドラに散らさず、ここで一元管理する。
var weatherAliasMap = map[string]Weather{
	"sunny":   WeatherSunny,
	"cloudy":  WeatherCloudy,
	"rainy":   WeatherRainy,
	"thunder": WeatherThunder,
	"晴れ":      WeatherSunny,
	"曇り":      WeatherCloudy,
	"雨":       WeatherRainy,
	"雷":       WeatherThunder,
}

// weatherLabelMap 天気から日本語表記への逆引き表
var weatherLabelMap = map[Weather]string{
	WeatherSunny:   "晴れ",
	WeatherCloudy:  "曇り",
	WeatherRainy:   "雨",
	WeatherThunder: "雷",
}

// ParseWeather 入力トークンを天気に解決する。未知の値は ok=false
func ParseWeather(input string) (Weather, bool) {
	w, ok := weatherAliasMap[input]
	return w, ok
}

// Valid 正規の天気値かどうか
func (w Weather) Valid() bool {
	_, ok := weatherLabelMap[w]
	return ok
}

// Label 日本語表記を返す
func (w Weather) Label() string {
	return weatherLabelMap[w]
}

// String 正規トークンを返す
func (w Weather) String() string {
	return string(w)
}
