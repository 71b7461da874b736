package model

// User-facing messages. The app is used in Persian.
const (
	MsgPhotoAdded    = "عکس اضافه شد"
	MsgPhotoDeleted  = "عکس حذف شد"
	MsgPhotoNotFound = "عکس پیدا نشد"
	MsgCommentAdded  = "کامنت اضافه شد"

	MsgNoteSaved   = "یادداشت ذخیره شد"
	MsgNoteDeleted = "یادداشت حذف شد"

	MsgTodoAdded    = "کار اضافه شد"
	MsgTodoToggled  = "وضعیت تغییر کرد"
	MsgTodoDeleted  = "کار حذف شد"
	MsgTodoNotFound = "کار پیدا نشد"

	MsgChatSent     = "پیام ارسال شد"
	MsgChatDeleted  = "پیام حذف شد"
	MsgChatsCleared = "همه پیام‌ها پاک شد"

	MsgSongAdded   = "آهنگ اضافه شد"
	MsgSongDeleted = "آهنگ حذف شد"

	MsgUnknownAction    = "عملیات نامعتبر است"
	MsgInvalidBody      = "درخواست نامعتبر است"
	MsgMethodNotAllowed = "این متد پشتیبانی نمی‌شود"
)
