package bot

// Reply keyboard labels. Incoming text is matched against them verbatim.
const (
	BtnStartOrder = "🖼 Оформить заказ"
	BtnMyOrders   = "📋 Мои заказы"
	BtnDone       = "✅ Готово"
	BtnContact    = "📱 Отправить контакт"
)

// Inline keyboard callback data.
const (
	CallbackFormatPrefix   = "fmt_"
	CallbackDeliveryPrefix = "del_"
	CallbackConfirm        = "confirm"
	CallbackCancel         = "cancel"
)

// MaxOperatorPhotos is how many photos are forwarded to the operator per order.
const MaxOperatorPhotos = 3
