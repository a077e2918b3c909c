package guardian

var HTMLToText = htmlToText
