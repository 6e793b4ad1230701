package view

const StartMessage = `👋 <b>Справочник почтовых индексов Москвы</b>

/zip <code>101000</code> найти адрес по индексу
/area <code>Басманный</code> найти индексы района
/distance <code>101000</code> <code>109012</code> расстояние между индексами`

const (
	ZipUsage      = "❌ Использование: /zip <code>индекс</code>"
	AreaUsage     = "❌ Использование: /area <code>район</code>"
	DistanceUsage = "❌ Использование: /distance <code>индекс1</code> <code>индекс2</code>"

	InvalidCode   = "Введите индекс, состоящий из 6 цифр"
	InternalError = "⚠️ Что-то пошло не так, попробуйте позже"
)

const (
	AddressTemplate      = "Почтовый индекс: %s\nАдрес: %s, %s, %s\nКоординаты: %s"
	AddressNotFound      = "Почтовый индекс не найден"
	AreaCodesTemplate    = "Район: %s\nНайденные почтовые индексы: %s"
	AreaNotFoundTemplate = "Район: %s\nПочтовые индексы не найдены"
	DistanceFailed       = "Расстояние между %s и %s невозможно рассчитать"
	DistanceTemplate     = "Расстояние между %s и %s в километрах составляет: %.2f"
)

const (
	NearbyButton       = "📍 Рядом (1 миля)"
	NearbyTemplate     = "Индексы в радиусе %g мили от %s:\n"
	NearbyItemTemplate = "%06d %s, %.2f км\n"
	NearbyEmpty        = "Рядом других индексов нет"
)
