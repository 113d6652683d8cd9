package controllers

const FROM_PROTECTED string = "from_protected"
