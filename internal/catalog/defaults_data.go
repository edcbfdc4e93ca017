package catalog

import (
	"github.com/shopspring/decimal"

	"sms-storefront/internal/models"
)

const (
	// FallbackFlag is shown for countries with no known flag glyph.
	FallbackFlag = "🏳️"
	// FallbackIcon is shown for services with no known icon.
	FallbackIcon = "📱"
)

var defaultCountries = []models.Country{
	{ID: 1, Name: "United States", ISO: "US", Flag: "🇺🇸", Available: true},
	{ID: 2, Name: "United Kingdom", ISO: "GB", Flag: "🇬🇧", Available: true},
	{ID: 3, Name: "Russia", ISO: "RU", Flag: "🇷🇺", Available: true},
	{ID: 4, Name: "Ukraine", ISO: "UA", Flag: "🇺🇦", Available: true},
	{ID: 5, Name: "Kazakhstan", ISO: "KZ", Flag: "🇰🇿", Available: true},
	{ID: 6, Name: "China", ISO: "CN", Flag: "🇨🇳", Available: true},
	{ID: 7, Name: "Philippines", ISO: "PH", Flag: "🇵🇭", Available: true},
	{ID: 8, Name: "Myanmar", ISO: "MM", Flag: "🇲🇲", Available: true},
	{ID: 9, Name: "Indonesia", ISO: "ID", Flag: "🇮🇩", Available: true},
	{ID: 10, Name: "Malaysia", ISO: "MY", Flag: "🇲🇾", Available: true},
	{ID: 11, Name: "Vietnam", ISO: "VN", Flag: "🇻🇳", Available: true},
	{ID: 12, Name: "Kyrgyzstan", ISO: "KG", Flag: "🇰🇬", Available: true},
	{ID: 13, Name: "Israel", ISO: "IL", Flag: "🇮🇱", Available: true},
	{ID: 14, Name: "Hong Kong", ISO: "HK", Flag: "🇭🇰", Available: true},
	{ID: 15, Name: "Poland", ISO: "PL", Flag: "🇵🇱", Available: true},
	{ID: 16, Name: "Romania", ISO: "RO", Flag: "🇷🇴", Available: true},
	{ID: 17, Name: "Estonia", ISO: "EE", Flag: "🇪🇪", Available: true},
	{ID: 18, Name: "Finland", ISO: "FI", Flag: "🇫🇮", Available: true},
	{ID: 19, Name: "Latvia", ISO: "LV", Flag: "🇱🇻", Available: true},
	{ID: 20, Name: "Lithuania", ISO: "LT", Flag: "🇱🇹", Available: true},
	{ID: 21, Name: "Serbia", ISO: "RS", Flag: "🇷🇸", Available: true},
	{ID: 22, Name: "Slovenia", ISO: "SI", Flag: "🇸🇮", Available: true},
	{ID: 23, Name: "Slovakia", ISO: "SK", Flag: "🇸🇰", Available: true},
	{ID: 24, Name: "Germany", ISO: "DE", Flag: "🇩🇪", Available: true},
	{ID: 25, Name: "Italy", ISO: "IT", Flag: "🇮🇹", Available: true},
	{ID: 26, Name: "Spain", ISO: "ES", Flag: "🇪🇸", Available: true},
	{ID: 27, Name: "France", ISO: "FR", Flag: "🇫🇷", Available: true},
	{ID: 28, Name: "Netherlands", ISO: "NL", Flag: "🇳🇱", Available: true},
	{ID: 29, Name: "Sweden", ISO: "SE", Flag: "🇸🇪", Available: true},
	{ID: 30, Name: "Portugal", ISO: "PT", Flag: "🇵🇹", Available: true},
	{ID: 31, Name: "Brazil", ISO: "BR", Flag: "🇧🇷", Available: true},
	{ID: 32, Name: "Colombia", ISO: "CO", Flag: "🇨🇴", Available: true},
	{ID: 33, Name: "Mexico", ISO: "MX", Flag: "🇲🇽", Available: true},
	{ID: 34, Name: "Peru", ISO: "PE", Flag: "🇵🇪", Available: true},
	{ID: 35, Name: "Argentina", ISO: "AR", Flag: "🇦🇷", Available: true},
	{ID: 36, Name: "Canada", ISO: "CA", Flag: "🇨🇦", Available: true},
	{ID: 37, Name: "Australia", ISO: "AU", Flag: "🇦🇺", Available: true},
	{ID: 38, Name: "New Zealand", ISO: "NZ", Flag: "🇳🇿", Available: true},
	{ID: 39, Name: "India", ISO: "IN", Flag: "🇮🇳", Available: true},
	{ID: 40, Name: "Pakistan", ISO: "PK", Flag: "🇵🇰", Available: true},
	{ID: 41, Name: "Bangladesh", ISO: "BD", Flag: "🇧🇩", Available: true},
	{ID: 42, Name: "Japan", ISO: "JP", Flag: "🇯🇵", Available: true},
	{ID: 43, Name: "South Korea", ISO: "KR", Flag: "🇰🇷", Available: true},
	{ID: 44, Name: "Thailand", ISO: "TH", Flag: "🇹🇭", Available: true},
	{ID: 45, Name: "Egypt", ISO: "EG", Flag: "🇪🇬", Available: true},
	{ID: 46, Name: "Morocco", ISO: "MA", Flag: "🇲🇦", Available: true},
	{ID: 47, Name: "Kenya", ISO: "KE", Flag: "🇰🇪", Available: true},
	{ID: 48, Name: "Nigeria", ISO: "NG", Flag: "🇳🇬", Available: true},
	{ID: 49, Name: "South Africa", ISO: "ZA", Flag: "🇿🇦", Available: true},
	{ID: 50, Name: "Turkey", ISO: "TR", Flag: "🇹🇷", Available: true},
}

var defaultServices = []models.Service{
	{ID: 1, Name: "WhatsApp", Icon: "📱", Description: "Verify your WhatsApp account", Price: price("4.0"), Available: true},
	{ID: 2, Name: "Telegram", Icon: "✈️", Description: "Verify your Telegram account", Price: price("4.0"), Available: true},
	{ID: 3, Name: "Facebook", Icon: "👤", Description: "Verify your Facebook account", Price: price("4.5"), Available: true},
	{ID: 4, Name: "Google", Icon: "🔍", Description: "Verify your Google account", Price: price("4.0"), Available: true},
	{ID: 5, Name: "Twitter", Icon: "🐦", Description: "Verify your Twitter account", Price: price("4.5"), Available: true},
	{ID: 6, Name: "Instagram", Icon: "📷", Description: "Verify your Instagram account", Price: price("5.0"), Available: true},
	{ID: 7, Name: "TikTok", Icon: "🎵", Description: "Verify your TikTok account", Price: price("5.5"), Available: true},
	{ID: 8, Name: "Snapchat", Icon: "👻", Description: "Verify your Snapchat account", Price: price("4.5"), Available: true},
	{ID: 9, Name: "LinkedIn", Icon: "💼", Description: "Verify your LinkedIn account", Price: price("4.0"), Available: true},
	{ID: 10, Name: "Uber", Icon: "🚗", Description: "Verify your Uber account", Price: price("4.5"), Available: true},
	{ID: 11, Name: "Airbnb", Icon: "🏠", Description: "Verify your Airbnb account", Price: price("5.0"), Available: true},
	{ID: 12, Name: "Netflix", Icon: "🎬", Description: "Verify your Netflix account", Price: price("5.5"), Available: true},
	{ID: 13, Name: "Amazon", Icon: "📦", Description: "Verify your Amazon account", Price: price("4.0"), Available: true},
	{ID: 14, Name: "PayPal", Icon: "💰", Description: "Verify your PayPal account", Price: price("6.0"), Available: true},
	{ID: 15, Name: "eBay", Icon: "🛒", Description: "Verify your eBay account", Price: price("4.5"), Available: true},
	{ID: 16, Name: "Tinder", Icon: "❤️", Description: "Verify your Tinder account", Price: price("5.0"), Available: true},
	{ID: 17, Name: "Bumble", Icon: "🐝", Description: "Verify your Bumble account", Price: price("5.0"), Available: true},
	{ID: 18, Name: "Discord", Icon: "💬", Description: "Verify your Discord account", Price: price("4.0"), Available: true},
	{ID: 19, Name: "Spotify", Icon: "🎵", Description: "Verify your Spotify account", Price: price("4.5"), Available: true},
	{ID: 20, Name: "Apple", Icon: "🍎", Description: "Verify your Apple account", Price: price("6.0"), Available: true},
	{ID: 21, Name: "Microsoft", Icon: "💻", Description: "Verify your Microsoft account", Price: price("5.0"), Available: true},
	{ID: 22, Name: "Steam", Icon: "🎮", Description: "Verify your Steam account", Price: price("4.5"), Available: true},
	{ID: 23, Name: "Epic Games", Icon: "🎯", Description: "Verify your Epic Games account", Price: price("4.5"), Available: true},
	{ID: 24, Name: "Coinbase", Icon: "💲", Description: "Verify your Coinbase account", Price: price("6.5"), Available: true},
	{ID: 25, Name: "Binance", Icon: "📊", Description: "Verify your Binance account", Price: price("6.5"), Available: true},
	{ID: 26, Name: "Kraken", Icon: "🐙", Description: "Verify your Kraken account", Price: price("6.0"), Available: true},
	{ID: 27, Name: "Venmo", Icon: "💸", Description: "Verify your Venmo account", Price: price("5.0"), Available: true},
	{ID: 28, Name: "Cash App", Icon: "💵", Description: "Verify your Cash App account", Price: price("5.0"), Available: true},
	{ID: 29, Name: "Zelle", Icon: "📲", Description: "Verify your Zelle account", Price: price("5.5"), Available: true},
	{ID: 30, Name: "Skype", Icon: "☁️", Description: "Verify your Skype account", Price: price("4.0"), Available: true},
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
